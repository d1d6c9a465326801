// Package router wires HTTP routes to handlers. Every protected route is
// registered together with an explicit policy descriptor; the guard
// middleware consults that descriptor, so a route's access requirement is
// visible right where the route is declared.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-directory/internal/handler"
)

// RegisterRoutes registers routes that carry no policy at all. Currently it
// exposes only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
