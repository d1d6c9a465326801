package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-directory/internal/middleware"
	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// RestaurantHandler exposes the minimal restaurant surface the verification
// workflow builds on: owners create listings, anyone can browse them.
type RestaurantHandler struct {
	Restaurants *repository.RestaurantRepo
}

func NewRestaurantHandler(restaurants *repository.RestaurantRepo) *RestaurantHandler {
	return &RestaurantHandler{Restaurants: restaurants}
}

type createRestaurantReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type restaurantResp struct {
	ID       uint64 `json:"id"`
	OwnerID  uint64 `json:"owner_id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}

func toRestaurantResp(r repository.Restaurant) restaurantResp {
	return restaurantResp{ID: r.ID, OwnerID: r.OwnerID, Name: r.Name, Address: r.Address, Verified: r.Verified}
}

// Create registers a new, unverified restaurant owned by the caller.
func (h *RestaurantHandler) Create(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createRestaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rest := repository.Restaurant{OwnerID: id.UserID, Name: req.Name, Address: strings.TrimSpace(req.Address)}
	if err := h.Restaurants.Create(ctx, &rest); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create restaurant failed"})
	}
	return c.JSON(http.StatusCreated, toRestaurantResp(rest))
}

// List returns all restaurants for public browsing.
func (h *RestaurantHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rests, err := h.Restaurants.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]restaurantResp, 0, len(rests))
	for _, r := range rests {
		out = append(out, toRestaurantResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single restaurant by id.
func (h *RestaurantHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rest, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toRestaurantResp(rest))
}
