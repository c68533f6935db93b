package middleware

import (
	"bytes"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/sheetodo/internal/pkg/logger"
)

// LoggerConfig controls what the request logger records
type LoggerConfig struct {
	LogRequestBody   bool
	MaxBodySize      int64 // Max body size to log (in bytes)
	SkipPaths        []string
	SensitiveHeaders []string
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		LogRequestBody:   true,
		MaxBodySize:      2048,
		SkipPaths:        []string{"/health"},
		SensitiveHeaders: []string{"authorization", "cookie", "x-cron-token"},
	}
}

func Logger(log *logger.Logger) gin.HandlerFunc {
	return LoggerWithConfig(log, DefaultLoggerConfig())
}

// LoggerWithConfig logs one structured line per request
func LoggerWithConfig(log *logger.Logger, config LoggerConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip[path] {
			c.Next()
			return
		}

		start := time.Now()

		var requestBody string
		if config.LogRequestBody && c.Request.Body != nil && c.Request.ContentLength > 0 {
			if c.Request.ContentLength > config.MaxBodySize {
				requestBody = "[Request body too large to log]"
			} else {
				bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, config.MaxBodySize))
				if err == nil {
					c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
					requestBody = sanitizeBody(string(bodyBytes), c.ContentType())
				}
			}
		}

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start).String(),
			"ip", c.ClientIP(),
			"size", c.Writer.Size(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, "query", q)
		}
		if requestBody != "" {
			fields = append(fields, "body", requestBody)
		}
		for _, h := range config.SensitiveHeaders {
			if c.GetHeader(h) != "" {
				fields = append(fields, "header_"+h, "********")
			}
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		reqLog := log.With(fields...)
		switch {
		case status >= 500:
			reqLog.Error("%s %s", c.Request.Method, path)
		case status >= 400:
			reqLog.Warn("%s %s", c.Request.Method, path)
		default:
			reqLog.Info("%s %s", c.Request.Method, path)
		}
	}
}

// sanitizeBody masks sensitive form fields and truncates everything else
func sanitizeBody(body, contentType string) string {
	if len(body) == 0 {
		return ""
	}

	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(body); err == nil {
			for key := range values {
				if isSensitiveField(strings.ToLower(key)) {
					values[key] = []string{"********"}
				}
			}
			body = values.Encode()
		}
	}

	return truncateString(body, 200)
}

func isSensitiveField(field string) bool {
	sensitive := []string{"password", "token", "secret", "key", "auth", "credential"}
	for _, s := range sensitive {
		if strings.Contains(field, s) {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
