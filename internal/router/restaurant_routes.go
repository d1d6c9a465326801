package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-directory/internal/auth"
	"github.com/iliyamo/restaurant-directory/internal/handler"
	"github.com/iliyamo/restaurant-directory/internal/middleware"
	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// RegisterRestaurants registers the restaurant browse and create endpoints.
// Browsing is public and cached; creation requires the OWNER or ADMIN role.
func RegisterRestaurants(e *echo.Echo, h *handler.RestaurantHandler, tokens *auth.TokenService, cache echo.MiddlewareFunc) {
	e.GET("/restaurants", h.List, cache)
	e.GET("/restaurants/:id", h.Get, cache)

	e.POST("/restaurants", h.Create,
		middleware.Guard(middleware.Authenticated(repository.RoleOwner, repository.RoleAdmin), tokens))
}
