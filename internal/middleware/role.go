package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole is a middleware that checks if the user has the required role.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
			return
		}

		userRole, _ := c.Get(ContextUserRole)
		if role, ok := userRole.(string); !ok || role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden,
				"You do not have permission to perform this action",
				map[string]interface{}{"required_role": requiredRole}))
			return
		}

		c.Next()
	}
}
