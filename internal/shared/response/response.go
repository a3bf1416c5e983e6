package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the single error shape of the API
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// CodeInternal marks failures outside the entry domain's error codes
const CodeInternal = "INTERNAL_SERVER_ERROR"

// Success responses are the bare payload
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorBody{
		Error: message,
		Code:  code,
	})
}

// Abort writes an error body and stops the handler chain
func Abort(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{
		Error: message,
		Code:  code,
	})
}

