package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONSuccess writes {"success": true, "data": data}.
func JSONSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// JSONOK writes {"success": true} with no payload.
func JSONOK(c *gin.Context, status int) {
	c.JSON(status, gin.H{"success": true})
}

// JSONError writes {"success": false, "error": message}.
func JSONError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}
