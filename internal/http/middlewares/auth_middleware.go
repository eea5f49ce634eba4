package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staffhub-io/staffhub/internal/actorctx"
	"github.com/staffhub-io/staffhub/internal/auth"
	"github.com/staffhub-io/staffhub/internal/config"
	"github.com/staffhub-io/staffhub/internal/domain/user"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserGetter
}

func NewAuthMiddleware(jwt TokenVerifier, users UserGetter) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// RequireAuth resolves the bearer token to an active user and attaches the
// identity (hash stripped) to the request. It never refreshes the token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		// the token only proves identity; the account itself must still exist
		// and be active
		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		actor, err := m.users.GetByID(cctx, claims.UserID)
		if err != nil || !actor.IsActive {
			abortUnauthorized(c, "User not found or inactive")
			return
		}

		actor.PasswordHash = ""

		c.Set(CtxActor, actor)
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func ActorFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxActor)
	if !ok {
		return user.User{}, false
	}
	actor, ok := v.(user.User)
	return actor, ok && actor.ID != ""
}
