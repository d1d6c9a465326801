package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-directory/internal/middleware"
	"github.com/iliyamo/restaurant-directory/internal/repository"
	"github.com/iliyamo/restaurant-directory/internal/service"
)

// VerificationHandler exposes the verification workflow over HTTP and maps
// its failures onto the status taxonomy: 404 unknown entity, 403 ownership,
// 400 state-machine violation.
type VerificationHandler struct {
	Svc *service.VerificationService
}

func NewVerificationHandler(svc *service.VerificationService) *VerificationHandler {
	return &VerificationHandler{Svc: svc}
}

type verificationReq struct {
	RestaurantID uint64 `json:"restaurant_id"`
}
type rejectReq struct {
	RejectionReason string `json:"rejectionReason"`
}

type verificationResp struct {
	ID              uint64     `json:"id"`
	RestaurantID    uint64     `json:"restaurant_id"`
	AdminID         *uint64    `json:"admin_id,omitempty"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

func toVerificationResp(vr repository.VerificationRequest) verificationResp {
	return verificationResp{
		ID:              vr.ID,
		RestaurantID:    vr.RestaurantID,
		AdminID:         vr.AdminID,
		Status:          vr.Status,
		RejectionReason: vr.RejectionReason,
		CreatedAt:       vr.CreatedAt,
		ReviewedAt:      vr.ReviewedAt,
	}
}

func verificationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrRestaurantNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	case errors.Is(err, repository.ErrRequestNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "verification request not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrPendingExists),
		errors.Is(err, service.ErrEmptyReason),
		errors.Is(err, repository.ErrRequestNotPending):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification operation failed"})
	}
}

// Request opens a verification request for the caller's restaurant.
func (h *VerificationHandler) Request(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req verificationReq
	if err := c.Bind(&req); err != nil || req.RestaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vr, err := h.Svc.Request(ctx, req.RestaurantID, id.UserID)
	if err != nil {
		return verificationError(c, err)
	}
	return c.JSON(http.StatusCreated, toVerificationResp(vr))
}

// Pending lists all open requests (admin review queue).
func (h *VerificationHandler) Pending(c echo.Context) error {
	return h.listWith(c, h.Svc.FindPending)
}

// All lists every request regardless of status.
func (h *VerificationHandler) All(c echo.Context) error {
	return h.listWith(c, h.Svc.FindAll)
}

// PendingCount returns the number of open requests for the admin dashboard.
func (h *VerificationHandler) PendingCount(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Svc.CountPending(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"pending": n})
}

// ByRestaurant lists the request history of one restaurant.
func (h *VerificationHandler) ByRestaurant(c echo.Context) error {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vrs, err := h.Svc.FindByRestaurant(ctx, restaurantID)
	if err != nil {
		return verificationError(c, err)
	}
	return c.JSON(http.StatusOK, toResponses(vrs))
}

// ByID fetches a single request.
func (h *VerificationHandler) ByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vr, err := h.Svc.FindByID(ctx, id)
	if err != nil {
		return verificationError(c, err)
	}
	return c.JSON(http.StatusOK, toVerificationResp(vr))
}

// Approve transitions a PENDING request to APPROVED and verifies the
// restaurant.
func (h *VerificationHandler) Approve(c echo.Context) error {
	return h.review(c, func(ctx context.Context, requestID, adminID uint64) (repository.VerificationRequest, error) {
		return h.Svc.Approve(ctx, requestID, adminID)
	})
}

// Reject transitions a PENDING request to REJECTED with a mandatory reason.
func (h *VerificationHandler) Reject(c echo.Context) error {
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.review(c, func(ctx context.Context, requestID, adminID uint64) (repository.VerificationRequest, error) {
		return h.Svc.Reject(ctx, requestID, adminID, req.RejectionReason)
	})
}

func (h *VerificationHandler) review(c echo.Context, op func(ctx context.Context, requestID, adminID uint64) (repository.VerificationRequest, error)) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vr, err := op(ctx, requestID, id.UserID)
	if err != nil {
		return verificationError(c, err)
	}
	return c.JSON(http.StatusOK, toVerificationResp(vr))
}

func (h *VerificationHandler) listWith(c echo.Context, list func(ctx context.Context) ([]repository.VerificationRequest, error)) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vrs, err := list(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toResponses(vrs))
}

func toResponses(vrs []repository.VerificationRequest) []verificationResp {
	out := make([]verificationResp, 0, len(vrs))
	for _, vr := range vrs {
		out = append(out, toVerificationResp(vr))
	}
	return out
}
