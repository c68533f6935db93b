package middleware

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/sheetodo/internal/pkg/response"
	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

const CronTokenHeader = "X-CRON-TOKEN"

// CronToken guards scheduler endpoints with a shared secret. An empty
// expected token rejects every request.
func CronToken(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := strings.TrimSpace(c.GetHeader(CronTokenHeader))
		if expected == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			reason := "cron token mismatch"
			if expected == "" {
				reason = "cron token not configured"
			}
			_ = c.Error(fmt.Errorf("%w: %s", apperrors.ErrForbidden, reason))
			response.Forbidden(c, "Invalid cron token")
			c.Abort()
			return
		}
		c.Next()
	}
}
