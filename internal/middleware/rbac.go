package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tiltakhub/participant-api/internal/models"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
	"github.com/tiltakhub/participant-api/pkg/response"
)

// RequireRoles allows the request through when the authenticated staff member
// holds at least one of the given roles.
func RequireRoles(roles ...models.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
