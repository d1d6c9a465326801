package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-directory/internal/auth"
)

// identityKey is the single context key under which the authentication
// guard stores the resolved identity. The value is an immutable
// auth.Identity; downstream code reads it through IdentityFrom and never
// mutates request state.
const identityKey = "identity"

// Guard returns an Echo middleware enforcing the route's policy in fixed
// order: authentication first, then role membership. Public routes pass
// straight through. Failure short-circuits the chain:
//
//	missing/invalid/expired token -> 401
//	blocked account               -> 403 (valid token, denied identity)
//	role not in the declared set  -> 403
func Guard(p RoutePolicy, tokens *auth.TokenService) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[string]bool, len(p.Roles))
	for _, r := range p.Roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !p.AuthRequired {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			id, err := tokens.VerifyAccess(raw)
			if err != nil {
				if errors.Is(err, auth.ErrAccountBlocked) {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "account is blocked"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(identityKey, id)

			if len(allowed) > 0 && !allowed[id.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the identity attached by the authentication guard.
// The second return is false on routes where the guard never ran.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	return id, ok
}
