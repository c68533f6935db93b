package routes

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/sheetodo/internal/config"
	"github.com/xyz-asif/sheetodo/internal/features/todos"
	"github.com/xyz-asif/sheetodo/internal/notify"
	"github.com/xyz-asif/sheetodo/internal/pkg/flash"
	"github.com/xyz-asif/sheetodo/internal/pkg/ratelimit"
	"github.com/xyz-asif/sheetodo/internal/pkg/response"
	"github.com/xyz-asif/sheetodo/internal/rowstore"
)

// SetupRoutes wires templates, shared services and every route onto router.
// ctx bounds background work such as rate limiter cleanup.
func SetupRoutes(ctx context.Context, router *gin.Engine, store rowstore.Store, cfg *config.Config) error {
	tmpl, err := todos.Templates(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().Unix(),
		}, "ok")
	})

	flashes := flash.NewStore(cfg.SecretKey, cfg.IsProduction())
	notifier := notify.NewLineSender(cfg.LineChannelAccessToken, cfg.LineUserID)

	var limiter *ratelimit.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = ratelimit.New(cfg.RateLimitPerMinute, time.Minute)
		limiter.StartCleanup(ctx, 5*time.Minute)
	}

	todos.RegisterRoutes(&router.RouterGroup, store, cfg, flashes, notifier, limiter)
	return nil
}
