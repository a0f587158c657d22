// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"strings"

	"carpool/pkg/auth"
	"carpool/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys for storing user data
const (
	UserIDKey     = "userID"
	EmployeeIDKey = "employeeID"
)

// Auth returns a middleware that validates bearer tokens.
func Auth(tokens auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(EmployeeIDKey, claims.EmployeeID)

		c.Next()
	}
}

// GetUserID retrieves the user ID from the context.
// Returns empty string if not found.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetEmployeeID retrieves the acting employee's ID from the context.
func GetEmployeeID(c *gin.Context) string {
	return c.GetString(EmployeeIDKey)
}
