package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/staffhub-io/staffhub/internal/domain/user"
)

// RequirePermission gates a route on the role x permission table.
func (m *AuthMiddleware) RequirePermission(perm user.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)

		if !ok {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		if !user.Can(actor.Role, perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role for this operation",
				},
			})
			return
		}
		c.Next()
	}
}
