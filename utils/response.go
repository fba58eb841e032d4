package utils

import "github.com/gin-gonic/gin"

// Error writes the uniform error body used by every endpoint.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

// Message writes a plain confirmation body.
func Message(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}
