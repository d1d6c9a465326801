package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-directory/internal/auth"
	"github.com/iliyamo/restaurant-directory/internal/handler"
	"github.com/iliyamo/restaurant-directory/internal/middleware"
)

// RegisterAuth registers the authentication endpoints under /auth. The
// sign-in, refresh and Google endpoints are public by policy (they are the
// routes that *produce* tokens); /auth/me requires any authenticated role.
// The rate limiter applies to the whole group so credential guessing and
// refresh hammering share one budget per client.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens *auth.TokenService, ratelimit echo.MiddlewareFunc) {
	g := e.Group("/auth", ratelimit)

	g.POST("/sign-up", a.SignUp, middleware.Guard(middleware.Public(), tokens))
	g.POST("/sign-in", a.SignIn, middleware.Guard(middleware.Public(), tokens))
	g.POST("/refresh-tokens", a.RefreshTokens, middleware.Guard(middleware.Public(), tokens))
	g.POST("/google-authentication", a.GoogleAuthentication, middleware.Guard(middleware.Public(), tokens))

	g.GET("/me", a.Me, middleware.Guard(middleware.Authenticated(), tokens))
}
