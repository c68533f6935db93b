package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the JSON envelope for every non-HTML endpoint
type APIResponse struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Code       string      `json:"code,omitempty"`
}

// JSON writes an envelope with the given status
func JSON(c *gin.Context, statusCode int, data interface{}, message string, errorCode ...string) {
	code := ""
	if len(errorCode) > 0 {
		code = errorCode[0]
	}

	c.JSON(statusCode, APIResponse{
		Success:    statusCode < http.StatusBadRequest,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Code:       code,
	})
}

// Success sends a 200 OK response with data
func Success(c *gin.Context, data interface{}, message string) {
	JSON(c, http.StatusOK, data, message)
}

// Error sends an error response with custom status code and message
func Error(c *gin.Context, statusCode int, message string, errorCode ...string) {
	JSON(c, statusCode, nil, message, errorCode...)
}

// ErrorWithData sends an error response that carries extra details
func ErrorWithData(c *gin.Context, statusCode int, message string, data interface{}, errorCode ...string) {
	JSON(c, statusCode, data, message, errorCode...)
}

// Forbidden sends a 403 Forbidden error
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, "FORBIDDEN")
}

// TooManyRequests sends a 429 error with retry details
func TooManyRequests(c *gin.Context, message string, data interface{}) {
	ErrorWithData(c, http.StatusTooManyRequests, message, data, "RATE_LIMITED")
}

// InternalServerError sends a 500 Internal Server Error
func InternalServerError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusInternalServerError, message, errorCode...)
}

// BadGateway sends a 502 when an upstream service failed
func BadGateway(c *gin.Context, message string) {
	Error(c, http.StatusBadGateway, message, "UPSTREAM_FAILED")
}

// ServiceUnavailable sends a 503 Service Unavailable error
func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, http.StatusServiceUnavailable, message, "STORE_UNAVAILABLE")
}
