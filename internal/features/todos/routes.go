package todos

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/sheetodo/internal/config"
	"github.com/xyz-asif/sheetodo/internal/middleware"
	"github.com/xyz-asif/sheetodo/internal/pkg/flash"
	"github.com/xyz-asif/sheetodo/internal/pkg/ratelimit"
	"github.com/xyz-asif/sheetodo/internal/rowstore"
)

// RegisterRoutes mounts the HTML pages and the reminder hook. The router
// must already carry the templates from Templates. Form posts are rate
// limited when limiter is non-nil.
func RegisterRoutes(router *gin.RouterGroup, store rowstore.Store, cfg *config.Config, flashes *flash.Store, notifier Notifier, limiter *ratelimit.RateLimiter) {
	repo := NewRepository(store, cfg.Timezone)
	reminder := NewReminder(repo, notifier, time.Duration(cfg.RemindWindowHours)*time.Hour)
	handler := NewHandler(repo, reminder, flashes)

	posts := []gin.HandlerFunc{}
	if limiter != nil {
		posts = append(posts, ratelimit.Middleware(limiter))
	}
	post := func(path string, h gin.HandlerFunc) {
		router.POST(path, append(posts[:len(posts):len(posts)], h)...)
	}

	router.GET("/", handler.List)
	router.GET("/new", handler.NewForm)
	post("/new", handler.Create)
	router.GET("/edit/:id", handler.EditForm)
	post("/edit/:id", handler.Update)
	post("/todos/:id/toggle", handler.Toggle)

	router.POST("/cron/remind", middleware.CronToken(cfg.CronAuthToken), handler.Remind)
}
