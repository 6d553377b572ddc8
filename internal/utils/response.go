package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes the standard response envelope around a data payload.
func Success(c *gin.Context, data gin.H) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error writes the error envelope with the given status code.
func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   msg,
	})
}
