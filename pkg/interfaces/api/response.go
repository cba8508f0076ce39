package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API reply
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes carry the HTTP status in their first three digits
const (
	CodeBadRequest   = 40000
	CodeNotFound     = 40400
	CodeInternal     = 50000
	CodePartialWrite = 50001
	CodeUnavailable  = 50300
)

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

func ErrorWithData(c *gin.Context, code int, message string, data any) {
	status := code / 100
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, Response{Code: code, Message: message, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, CodeBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, CodeNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, CodeInternal, message)
}
