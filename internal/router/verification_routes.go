package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-directory/internal/auth"
	"github.com/iliyamo/restaurant-directory/internal/handler"
	"github.com/iliyamo/restaurant-directory/internal/middleware"
	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// RegisterVerification registers the verification workflow endpoints.
// Guards run in fixed order on every route: authentication, then role, then
// restaurant ownership on owner-scoped routes. Admin-only review routes
// never need the ownership guard; the role check already restricts them.
func RegisterVerification(e *echo.Echo, h *handler.VerificationHandler, tokens *auth.TokenService, restaurants middleware.RestaurantDirectory) {
	ownerOrAdmin := middleware.Guard(middleware.Authenticated(repository.RoleOwner, repository.RoleAdmin), tokens)
	adminOnly := middleware.Guard(middleware.Authenticated(repository.RoleAdmin), tokens)
	ownership := middleware.RequireRestaurantOwnership(restaurants)

	g := e.Group("/verification")

	g.POST("/request", h.Request, ownerOrAdmin, ownership)

	g.GET("/pending", h.Pending, adminOnly)
	g.GET("/pending/count", h.PendingCount, adminOnly)
	g.GET("/all", h.All, adminOnly)

	g.GET("/restaurant/:id", h.ByRestaurant, ownerOrAdmin, ownership)
	g.GET("/:id", h.ByID, ownerOrAdmin)

	g.PATCH("/:id/approve", h.Approve, adminOnly)
	g.PATCH("/:id/reject", h.Reject, adminOnly)
}
