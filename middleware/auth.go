package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID
	// in the Gin context.
	ContextUserIDKey = "user_id"
	// ContextRoleKey stores the role inside the Gin context.
	ContextRoleKey = "role"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" || utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextRoleKey, claims.Role)
		ctx.Next()
	}
}

// WorkerRequired admits authors and moderators only. Runs after
// AuthRequired in the chain.
func WorkerRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role, ok := roleFrom(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
			ctx.Abort()
			return
		}
		if role == models.RoleUser {
			utils.Error(ctx, http.StatusForbidden, "Access Forbidden")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// ModeratorRequired admits moderators only.
func ModeratorRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role, ok := roleFrom(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
			ctx.Abort()
			return
		}
		if role != models.RoleModerator {
			utils.Error(ctx, http.StatusForbidden, "Access Forbidden")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func roleFrom(ctx *gin.Context) (string, bool) {
	value, exists := ctx.Get(ContextRoleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(string)
	return role, ok && role != ""
}
