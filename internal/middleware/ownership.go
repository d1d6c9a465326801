package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// RestaurantDirectory is the single lookup the ownership guard performs.
// *repository.RestaurantRepo satisfies it.
type RestaurantDirectory interface {
	GetByID(ctx context.Context, id uint64) (repository.Restaurant, error)
}

// RequireRestaurantOwnership returns a middleware for routes that operate on
// a specific restaurant. It must run after Guard. Admin identities always
// pass; anyone else must own the target restaurant. The target id comes from
// the ":id" path parameter or, when absent, from a "restaurant_id" body
// field (the body is restored so handlers can bind it again).
//
// An unknown restaurant is a 404 before any ownership comparison. The
// ownership check itself is a plain boolean; this boundary translates a
// deny into 403.
func RequireRestaurantOwnership(restaurants RestaurantDirectory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				// Should not happen after Guard; deny rather than guess.
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}

			restaurantID, err := targetRestaurantID(c)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			rest, err := restaurants.GetByID(ctx, restaurantID)
			if err != nil {
				if errors.Is(err, repository.ErrRestaurantNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
			}

			if !ownsRestaurant(id.UserID, id.IsAdmin(), rest) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// ownsRestaurant is the ownership relation itself: admins act on any
// restaurant, everyone else only on their own.
func ownsRestaurant(userID uint64, isAdmin bool, rest repository.Restaurant) bool {
	return isAdmin || rest.OwnerID == userID
}

// targetRestaurantID resolves which restaurant the request targets.
func targetRestaurantID(c echo.Context) (uint64, error) {
	if p := c.Param("id"); p != "" {
		return strconv.ParseUint(p, 10, 64)
	}

	// Read and restore the body so the handler can still bind it.
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return 0, err
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		RestaurantID uint64 `json:"restaurant_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.RestaurantID == 0 {
		return 0, errors.New("restaurant_id missing from request body")
	}
	return payload.RestaurantID, nil
}
