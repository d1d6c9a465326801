// Package service holds the business workflows that sit between HTTP
// handlers and repositories.
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-directory/internal/queue"
	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// ErrAlreadyVerified is returned when an owner requests verification for a
// restaurant whose flag is already set.
var ErrAlreadyVerified = errors.New("restaurant already verified")

// ErrPendingExists is returned when a restaurant already has an open
// request; at most one PENDING request may exist per restaurant.
var ErrPendingExists = errors.New("verification request already pending")

// ErrEmptyReason is returned when a rejection arrives without a reason.
var ErrEmptyReason = errors.New("rejection reason required")

// RestaurantDirectory is the slice of restaurant persistence the workflow
// needs. *repository.RestaurantRepo satisfies it.
type RestaurantDirectory interface {
	GetByID(ctx context.Context, id uint64) (repository.Restaurant, error)
}

// VerificationStore persists verification requests. *repository.
// VerificationRepo satisfies it; its Approve and Reject enforce the
// PENDING-only transition atomically.
type VerificationStore interface {
	Create(ctx context.Context, restaurantID uint64) (repository.VerificationRequest, error)
	GetByID(ctx context.Context, id uint64) (repository.VerificationRequest, error)
	HasPending(ctx context.Context, restaurantID uint64) (bool, error)
	ListPending(ctx context.Context) ([]repository.VerificationRequest, error)
	ListAll(ctx context.Context) ([]repository.VerificationRequest, error)
	ListByRestaurant(ctx context.Context, restaurantID uint64) ([]repository.VerificationRequest, error)
	CountPending(ctx context.Context) (int64, error)
	Approve(ctx context.Context, requestID, adminID uint64) (repository.VerificationRequest, error)
	Reject(ctx context.Context, requestID, adminID uint64, reason string) (repository.VerificationRequest, error)
}

// Notifier dispatches review events without blocking the request.
// *queue.Notifier satisfies it.
type Notifier interface {
	Enqueue(event queue.VerificationReviewedEvent)
}

// VerificationService runs the restaurant verification state machine:
// owners open a PENDING request, an admin moves it to APPROVED or REJECTED
// exactly once, approval flips the restaurant's public verified flag.
type VerificationService struct {
	restaurants RestaurantDirectory
	store       VerificationStore
	notifier    Notifier
}

func NewVerificationService(restaurants RestaurantDirectory, store VerificationStore, notifier Notifier) *VerificationService {
	return &VerificationService{restaurants: restaurants, store: store, notifier: notifier}
}

// Request opens a new PENDING request for the restaurant. The requester
// must be the restaurant's owner; verified restaurants and restaurants with
// an open request are refused.
func (s *VerificationService) Request(ctx context.Context, restaurantID, requesterID uint64) (repository.VerificationRequest, error) {
	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return repository.VerificationRequest{}, err
	}
	if rest.OwnerID != requesterID {
		return repository.VerificationRequest{}, repository.ErrForbidden
	}
	if rest.Verified {
		return repository.VerificationRequest{}, ErrAlreadyVerified
	}
	pending, err := s.store.HasPending(ctx, restaurantID)
	if err != nil {
		return repository.VerificationRequest{}, err
	}
	if pending {
		return repository.VerificationRequest{}, ErrPendingExists
	}
	return s.store.Create(ctx, restaurantID)
}

// Approve moves a PENDING request to APPROVED and marks the restaurant
// verified; the store runs both writes in one transaction. The owner
// notification is enqueued after the commit and never awaited.
func (s *VerificationService) Approve(ctx context.Context, requestID, adminID uint64) (repository.VerificationRequest, error) {
	vr, err := s.store.Approve(ctx, requestID, adminID)
	if err != nil {
		return repository.VerificationRequest{}, err
	}
	s.notifyReviewed(ctx, vr, adminID)
	return vr, nil
}

// Reject moves a PENDING request to REJECTED. The reason is mandatory and
// stored verbatim for the owner to read.
func (s *VerificationService) Reject(ctx context.Context, requestID, adminID uint64, reason string) (repository.VerificationRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return repository.VerificationRequest{}, ErrEmptyReason
	}
	vr, err := s.store.Reject(ctx, requestID, adminID, reason)
	if err != nil {
		return repository.VerificationRequest{}, err
	}
	s.notifyReviewed(ctx, vr, adminID)
	return vr, nil
}

// FindPending lists all open requests for the admin review queue.
func (s *VerificationService) FindPending(ctx context.Context) ([]repository.VerificationRequest, error) {
	return s.store.ListPending(ctx)
}

// FindAll lists every request regardless of status.
func (s *VerificationService) FindAll(ctx context.Context) ([]repository.VerificationRequest, error) {
	return s.store.ListAll(ctx)
}

// FindByRestaurant lists a restaurant's request history.
func (s *VerificationService) FindByRestaurant(ctx context.Context, restaurantID uint64) ([]repository.VerificationRequest, error) {
	return s.store.ListByRestaurant(ctx, restaurantID)
}

// FindByID fetches a single request.
func (s *VerificationService) FindByID(ctx context.Context, id uint64) (repository.VerificationRequest, error) {
	return s.store.GetByID(ctx, id)
}

// CountPending is consumed by the admin dashboard aggregator.
func (s *VerificationService) CountPending(ctx context.Context) (int64, error) {
	return s.store.CountPending(ctx)
}

// notifyReviewed enqueues the review event. Failures to resolve the
// restaurant are logged and swallowed; notifications are best-effort and
// must never fail the review itself.
func (s *VerificationService) notifyReviewed(ctx context.Context, vr repository.VerificationRequest, adminID uint64) {
	if s.notifier == nil {
		return
	}
	rest, err := s.restaurants.GetByID(ctx, vr.RestaurantID)
	if err != nil {
		log.Printf("verification: skipping notification, restaurant %d lookup failed: %v", vr.RestaurantID, err)
		return
	}
	reviewedAt := time.Now().UTC()
	if vr.ReviewedAt != nil {
		reviewedAt = *vr.ReviewedAt
	}
	s.notifier.Enqueue(queue.VerificationReviewedEvent{
		RequestID:       vr.ID,
		RestaurantID:    rest.ID,
		RestaurantName:  rest.Name,
		OwnerID:         rest.OwnerID,
		AdminID:         adminID,
		Status:          vr.Status,
		RejectionReason: vr.RejectionReason,
		ReviewedAt:      reviewedAt.Format(time.RFC3339),
	})
}
