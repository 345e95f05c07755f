package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const principalContextKey = "pnjpremium.principal"

type principal struct {
	ID    string
	Token string
}

// PrincipalResolver maps a bearer token to a user id. The identity service
// lives outside this module; implementations call it or, in dev, treat the
// token as the id itself.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// StaticResolver is the dev resolver: the token is the user id.
type StaticResolver struct{}

func (StaticResolver) Resolve(ctx context.Context, token string) (string, error) {
	return token, nil
}

type AuthMiddleware struct {
	Resolver PrincipalResolver
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Resolver == nil {
		c.Next()
		return
	}
	id, err := m.Resolver.Resolve(c.Request.Context(), token)
	if err != nil || id == "" {
		if err != nil && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	setPrincipal(c, principal{ID: id, Token: token})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requirePrincipal(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
