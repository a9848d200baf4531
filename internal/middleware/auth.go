package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smart-task-manager/internal/auth"
	"smart-task-manager/internal/service"
)

// Context keys set by JWTAuthMiddleware.
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
)

// JWTAuthMiddleware validates JWT token in Authorization header
func JWTAuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Fallback for WebSocket/browser where custom headers cannot be set: allow token in query param
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		// Store user info in context for use in handlers
		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), claims.UserID))

		c.Next()
	}
}
