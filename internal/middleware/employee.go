package middleware

import (
	"errors"

	apperrors "carpool/internal/errors"
	"carpool/internal/models"
	"carpool/pkg/response"

	"github.com/gin-gonic/gin"
)

// EmployeeLookup resolves employee IDs against the user directory.
type EmployeeLookup interface {
	FindByEmployeeID(employeeID string) (*models.User, error)
}

// RegisteredEmployee rejects tokens whose employee is no longer in the
// directory or now belongs to a different account. It must run after Auth.
func RegisteredEmployee(lookup EmployeeLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID := GetEmployeeID(c)
		if employeeID == "" {
			response.Unauthorized(c, "user not authenticated")
			c.Abort()
			return
		}

		user, err := lookup.FindByEmployeeID(employeeID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				response.Unauthorized(c, "account no longer exists")
			} else {
				response.InternalError(c)
			}
			c.Abort()
			return
		}

		if user.ID != GetUserID(c) {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Next()
	}
}
