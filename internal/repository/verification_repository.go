package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Verification request statuses. PENDING is the only non-terminal state;
// a request moves to APPROVED or REJECTED exactly once and never back.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// VerificationRequest mirrors the 'verification_requests' table. AdminID and
// ReviewedAt stay nil until an admin reviews the request; RejectionReason is
// set only on REJECTED rows.
type VerificationRequest struct {
	ID              uint64
	RestaurantID    uint64
	AdminID         *uint64
	Status          string
	RejectionReason string
	CreatedAt       time.Time
	ReviewedAt      *time.Time
}

// VerificationRepo encapsulates all database queries related to verification
// requests, including the approval transaction that also flips the owning
// restaurant's verified flag.
type VerificationRepo struct {
	db *sql.DB
}

func NewVerificationRepo(db *sql.DB) *VerificationRepo {
	return &VerificationRepo{db: db}
}

const verificationColumns = "id, restaurant_id, admin_id, status, rejection_reason, created_at, reviewed_at"

// Create inserts a new PENDING request for the restaurant and returns the
// stored row.
func (r *VerificationRepo) Create(ctx context.Context, restaurantID uint64) (VerificationRequest, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO verification_requests (restaurant_id, status) VALUES (?, ?)",
		restaurantID, StatusPending)
	if err != nil {
		return VerificationRequest{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return VerificationRequest{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a request by id, returning ErrRequestNotFound when absent.
func (r *VerificationRepo) GetByID(ctx context.Context, id uint64) (VerificationRequest, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+verificationColumns+" FROM verification_requests WHERE id = ? LIMIT 1", id)
	return scanVerification(row)
}

// HasPending reports whether the restaurant already has a PENDING request.
// At most one may exist at any time.
func (r *VerificationRepo) HasPending(ctx context.Context, restaurantID uint64) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM verification_requests WHERE restaurant_id = ? AND status = ?",
		restaurantID, StatusPending).Scan(&n)
	return n > 0, err
}

// ListPending returns all PENDING requests, oldest first.
func (r *VerificationRepo) ListPending(ctx context.Context) ([]VerificationRequest, error) {
	return r.list(ctx,
		"SELECT "+verificationColumns+" FROM verification_requests WHERE status = ? ORDER BY created_at",
		StatusPending)
}

// ListAll returns every request, newest first.
func (r *VerificationRepo) ListAll(ctx context.Context) ([]VerificationRequest, error) {
	return r.list(ctx,
		"SELECT "+verificationColumns+" FROM verification_requests ORDER BY created_at DESC")
}

// ListByRestaurant returns the restaurant's full request history, newest first.
func (r *VerificationRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]VerificationRequest, error) {
	return r.list(ctx,
		"SELECT "+verificationColumns+" FROM verification_requests WHERE restaurant_id = ? ORDER BY created_at DESC",
		restaurantID)
}

// CountPending returns the number of PENDING requests. Used by the admin
// dashboard aggregator.
func (r *VerificationRepo) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM verification_requests WHERE status = ?", StatusPending).Scan(&n)
	return n, err
}

// Approve transitions a PENDING request to APPROVED and sets the owning
// restaurant's verified flag. Both writes run in one transaction so a crash
// cannot leave an approved request next to an unverified restaurant. Returns
// ErrRequestNotFound for unknown ids and ErrRequestNotPending when the
// request was already reviewed.
func (r *VerificationRepo) Approve(ctx context.Context, requestID, adminID uint64) (VerificationRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return VerificationRequest{}, err
	}
	defer func() { _ = tx.Rollback() }()

	vr, err := lockRequest(ctx, tx, requestID)
	if err != nil {
		return VerificationRequest{}, err
	}
	if vr.Status != StatusPending {
		return VerificationRequest{}, ErrRequestNotPending
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE verification_requests SET status=?, admin_id=?, reviewed_at=? WHERE id=?",
		StatusApproved, adminID, now, requestID); err != nil {
		return VerificationRequest{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE restaurants SET verified=1 WHERE id=?", vr.RestaurantID); err != nil {
		return VerificationRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return VerificationRequest{}, err
	}

	vr.Status = StatusApproved
	vr.AdminID = &adminID
	vr.ReviewedAt = &now
	return vr, nil
}

// Reject transitions a PENDING request to REJECTED with the given reason.
// The caller is responsible for ensuring the reason is non-empty.
func (r *VerificationRepo) Reject(ctx context.Context, requestID, adminID uint64, reason string) (VerificationRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return VerificationRequest{}, err
	}
	defer func() { _ = tx.Rollback() }()

	vr, err := lockRequest(ctx, tx, requestID)
	if err != nil {
		return VerificationRequest{}, err
	}
	if vr.Status != StatusPending {
		return VerificationRequest{}, ErrRequestNotPending
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE verification_requests SET status=?, admin_id=?, rejection_reason=?, reviewed_at=? WHERE id=?",
		StatusRejected, adminID, reason, now, requestID); err != nil {
		return VerificationRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return VerificationRequest{}, err
	}

	vr.Status = StatusRejected
	vr.AdminID = &adminID
	vr.RejectionReason = reason
	vr.ReviewedAt = &now
	return vr, nil
}

// lockRequest reads a request row inside the transaction with a row lock so
// two concurrent reviews of the same request serialize on the status check.
func lockRequest(ctx context.Context, tx *sql.Tx, id uint64) (VerificationRequest, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+verificationColumns+" FROM verification_requests WHERE id = ? FOR UPDATE", id)
	return scanVerification(row)
}

func (r *VerificationRepo) list(ctx context.Context, query string, args ...any) ([]VerificationRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VerificationRequest
	for rows.Next() {
		vr, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, vr)
	}
	return out, rows.Err()
}

// rowScanner lets scanVerification work on both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVerification(row rowScanner) (VerificationRequest, error) {
	var (
		vr         VerificationRequest
		adminID    sql.NullInt64
		reason     sql.NullString
		reviewedAt sql.NullTime
	)
	err := row.Scan(&vr.ID, &vr.RestaurantID, &adminID, &vr.Status, &reason, &vr.CreatedAt, &reviewedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return VerificationRequest{}, ErrRequestNotFound
		}
		return VerificationRequest{}, err
	}
	if adminID.Valid {
		v := uint64(adminID.Int64)
		vr.AdminID = &v
	}
	vr.RejectionReason = reason.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		vr.ReviewedAt = &t
	}
	return vr, nil
}
