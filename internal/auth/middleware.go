package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "auth_actor"

// IdentityMiddleware resolves the acting user from a bearer token when one
// is supplied. The API itself is open; the resolved identity is used only
// for audit attribution, so requests without (or with invalid) tokens
// proceed anonymously rather than being rejected.
type IdentityMiddleware struct {
	tokens *TokenManager
}

// NewIdentityMiddleware constructs middleware.
func NewIdentityMiddleware(tokens *TokenManager) *IdentityMiddleware {
	return &IdentityMiddleware{tokens: tokens}
}

// Handle parses an optional Authorization header.
func (m *IdentityMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Next()
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return c.Next()
	}

	userID := claims.UserID
	c.Locals(actorKey, &userID)
	return c.Next()
}

// ActorFromContext returns the acting user id, or nil for anonymous
// requests. Audit entries for anonymous actions carry user_id=null.
func ActorFromContext(c *fiber.Ctx) *int64 {
	val := c.Locals(actorKey)
	if val == nil {
		return nil
	}
	id, ok := val.(*int64)
	if !ok {
		return nil
	}
	return id
}
