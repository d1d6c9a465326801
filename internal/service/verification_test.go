package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-directory/internal/queue"
	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// fakeWorld is an in-memory stand-in for the restaurant table and the
// verification store, mirroring the transactional coupling of Approve:
// flipping a request to APPROVED also flips the restaurant's flag.
type fakeWorld struct {
	restaurants map[uint64]repository.Restaurant
	requests    map[uint64]repository.VerificationRequest
	nextID      uint64
}

func newFakeWorld(restaurants ...repository.Restaurant) *fakeWorld {
	w := &fakeWorld{
		restaurants: map[uint64]repository.Restaurant{},
		requests:    map[uint64]repository.VerificationRequest{},
		nextID:      1,
	}
	for _, r := range restaurants {
		w.restaurants[r.ID] = r
	}
	return w
}

func (w *fakeWorld) GetByID(_ context.Context, id uint64) (repository.Restaurant, error) {
	r, ok := w.restaurants[id]
	if !ok {
		return repository.Restaurant{}, repository.ErrRestaurantNotFound
	}
	return r, nil
}

func (w *fakeWorld) Create(_ context.Context, restaurantID uint64) (repository.VerificationRequest, error) {
	vr := repository.VerificationRequest{
		ID:           w.nextID,
		RestaurantID: restaurantID,
		Status:       repository.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	w.nextID++
	w.requests[vr.ID] = vr
	return vr, nil
}

func (w *fakeWorld) getRequest(id uint64) (repository.VerificationRequest, error) {
	vr, ok := w.requests[id]
	if !ok {
		return repository.VerificationRequest{}, repository.ErrRequestNotFound
	}
	return vr, nil
}

func (w *fakeWorld) HasPending(_ context.Context, restaurantID uint64) (bool, error) {
	for _, vr := range w.requests {
		if vr.RestaurantID == restaurantID && vr.Status == repository.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (w *fakeWorld) ListPending(_ context.Context) ([]repository.VerificationRequest, error) {
	var out []repository.VerificationRequest
	for _, vr := range w.requests {
		if vr.Status == repository.StatusPending {
			out = append(out, vr)
		}
	}
	return out, nil
}

func (w *fakeWorld) ListAll(_ context.Context) ([]repository.VerificationRequest, error) {
	var out []repository.VerificationRequest
	for _, vr := range w.requests {
		out = append(out, vr)
	}
	return out, nil
}

func (w *fakeWorld) ListByRestaurant(_ context.Context, restaurantID uint64) ([]repository.VerificationRequest, error) {
	var out []repository.VerificationRequest
	for _, vr := range w.requests {
		if vr.RestaurantID == restaurantID {
			out = append(out, vr)
		}
	}
	return out, nil
}

func (w *fakeWorld) CountPending(ctx context.Context) (int64, error) {
	pending, _ := w.ListPending(ctx)
	return int64(len(pending)), nil
}

func (w *fakeWorld) Approve(_ context.Context, requestID, adminID uint64) (repository.VerificationRequest, error) {
	vr, err := w.getRequest(requestID)
	if err != nil {
		return repository.VerificationRequest{}, err
	}
	if vr.Status != repository.StatusPending {
		return repository.VerificationRequest{}, repository.ErrRequestNotPending
	}
	now := time.Now().UTC()
	vr.Status = repository.StatusApproved
	vr.AdminID = &adminID
	vr.ReviewedAt = &now
	w.requests[requestID] = vr

	rest := w.restaurants[vr.RestaurantID]
	rest.Verified = true
	w.restaurants[vr.RestaurantID] = rest
	return vr, nil
}

func (w *fakeWorld) Reject(_ context.Context, requestID, adminID uint64, reason string) (repository.VerificationRequest, error) {
	vr, err := w.getRequest(requestID)
	if err != nil {
		return repository.VerificationRequest{}, err
	}
	if vr.Status != repository.StatusPending {
		return repository.VerificationRequest{}, repository.ErrRequestNotPending
	}
	now := time.Now().UTC()
	vr.Status = repository.StatusRejected
	vr.AdminID = &adminID
	vr.RejectionReason = reason
	vr.ReviewedAt = &now
	w.requests[requestID] = vr
	return vr, nil
}

// fakeStore adapts fakeWorld to the VerificationStore interface (GetByID on
// the store addresses requests, not restaurants).
type fakeStore struct{ *fakeWorld }

func (s fakeStore) GetByID(ctx context.Context, id uint64) (repository.VerificationRequest, error) {
	return s.getRequest(id)
}

type fakeNotifier struct {
	events []queue.VerificationReviewedEvent
}

func (n *fakeNotifier) Enqueue(ev queue.VerificationReviewedEvent) {
	n.events = append(n.events, ev)
}

func newTestService(w *fakeWorld) (*VerificationService, *fakeNotifier) {
	n := &fakeNotifier{}
	return NewVerificationService(w, fakeStore{w}, n), n
}

func TestVerificationRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown restaurant", func(t *testing.T) {
		svc, _ := newTestService(newFakeWorld())
		_, err := svc.Request(ctx, 99, 7)
		require.ErrorIs(t, err, repository.ErrRestaurantNotFound)
	})

	t.Run("requester is not the owner", func(t *testing.T) {
		svc, _ := newTestService(newFakeWorld(repository.Restaurant{ID: 3, OwnerID: 7}))
		_, err := svc.Request(ctx, 3, 8)
		require.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("already verified restaurant", func(t *testing.T) {
		svc, _ := newTestService(newFakeWorld(repository.Restaurant{ID: 3, OwnerID: 7, Verified: true}))
		_, err := svc.Request(ctx, 3, 7)
		require.ErrorIs(t, err, ErrAlreadyVerified)
	})

	t.Run("second request while one is pending", func(t *testing.T) {
		svc, _ := newTestService(newFakeWorld(repository.Restaurant{ID: 3, OwnerID: 7}))
		first, err := svc.Request(ctx, 3, 7)
		require.NoError(t, err)
		require.Equal(t, repository.StatusPending, first.Status)

		_, err = svc.Request(ctx, 3, 7)
		require.ErrorIs(t, err, ErrPendingExists)
	})
}

func TestVerificationReview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	setup := func(t *testing.T) (*VerificationService, *fakeNotifier, *fakeWorld, repository.VerificationRequest) {
		w := newFakeWorld(repository.Restaurant{ID: 3, OwnerID: 7, Name: "Trattoria"})
		svc, n := newTestService(w)
		vr, err := svc.Request(ctx, 3, 7)
		require.NoError(t, err)
		return svc, n, w, vr
	}

	t.Run("approve flips request and restaurant together", func(t *testing.T) {
		svc, n, w, vr := setup(t)

		approved, err := svc.Approve(ctx, vr.ID, 1)
		require.NoError(t, err)
		require.Equal(t, repository.StatusApproved, approved.Status)
		require.NotNil(t, approved.AdminID)
		require.Equal(t, uint64(1), *approved.AdminID)
		require.NotNil(t, approved.ReviewedAt)
		require.True(t, w.restaurants[3].Verified)

		require.Len(t, n.events, 1)
		require.Equal(t, repository.StatusApproved, n.events[0].Status)
		require.Equal(t, uint64(7), n.events[0].OwnerID)
		require.Equal(t, "Trattoria", n.events[0].RestaurantName)
	})

	t.Run("approve unknown request", func(t *testing.T) {
		svc, _, _, _ := setup(t)
		_, err := svc.Approve(ctx, 999, 1)
		require.ErrorIs(t, err, repository.ErrRequestNotFound)
	})

	t.Run("review is exactly once", func(t *testing.T) {
		svc, _, w, vr := setup(t)

		_, err := svc.Approve(ctx, vr.ID, 1)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, vr.ID, 1)
		require.ErrorIs(t, err, repository.ErrRequestNotPending)
		_, err = svc.Reject(ctx, vr.ID, 1, "late change of heart")
		require.ErrorIs(t, err, repository.ErrRequestNotPending)

		// The terminal state and the restaurant flag stayed intact.
		require.Equal(t, repository.StatusApproved, w.requests[vr.ID].Status)
		require.True(t, w.restaurants[3].Verified)
	})

	t.Run("reject requires a reason and does not verify", func(t *testing.T) {
		svc, n, w, vr := setup(t)

		_, err := svc.Reject(ctx, vr.ID, 1, "   ")
		require.ErrorIs(t, err, ErrEmptyReason)

		rejected, err := svc.Reject(ctx, vr.ID, 1, "address could not be confirmed")
		require.NoError(t, err)
		require.Equal(t, repository.StatusRejected, rejected.Status)
		require.Equal(t, "address could not be confirmed", rejected.RejectionReason)
		require.False(t, w.restaurants[3].Verified)

		require.Len(t, n.events, 1)
		require.Equal(t, "address could not be confirmed", n.events[0].RejectionReason)

		_, err = svc.Approve(ctx, vr.ID, 1)
		require.ErrorIs(t, err, repository.ErrRequestNotPending)
	})
}

func TestVerificationEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Owner 7 lists restaurant 3, admin 1 reviews it.
	w := newFakeWorld(repository.Restaurant{ID: 3, OwnerID: 7, Name: "Trattoria"})
	svc, _ := newTestService(w)

	require.False(t, w.restaurants[3].Verified)

	vr, err := svc.Request(ctx, 3, 7)
	require.NoError(t, err)
	require.Equal(t, repository.StatusPending, vr.Status)

	pending, err := svc.FindPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	count, err := svc.CountPending(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	approved, err := svc.Approve(ctx, vr.ID, 1)
	require.NoError(t, err)
	require.Equal(t, repository.StatusApproved, approved.Status)
	require.True(t, w.restaurants[3].Verified)

	// A verified restaurant cannot be submitted again.
	_, err = svc.Request(ctx, 3, 7)
	require.ErrorIs(t, err, ErrAlreadyVerified)

	history, err := svc.FindByRestaurant(ctx, 3)
	require.NoError(t, err)
	require.Len(t, history, 1)
}
