package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Role values stored in the users.role column and embedded in token claims.
const (
	RoleUser  = "USER"
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
)

// User mirrors the 'users' table. PasswordHash is empty for accounts created
// through Google sign-in that never set a password; GoogleID is empty for
// password-only accounts.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	GoogleID     string
	FullName     string
	Role         string
	IsBlocked    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,google_id,full_name,role,is_blocked,created_at,updated_at"

// Create inserts a password-based user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, fullName, role string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, role) VALUES (?,?,?,?)",
		email, passwordHash, fullName, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateFederated inserts a user discovered through Google sign-in. The
// account has no password hash; the Google subject is its only credential.
func (r *UserRepo) CreateFederated(ctx context.Context, email, fullName, googleID string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, google_id, full_name, role) VALUES (?,?,?,?)",
		email, googleID, fullName, RoleUser)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// AdoptGoogleIdentity links a Google subject to an existing account found by
// email and records the provider-supplied name when the row has none.
func (r *UserRepo) AdoptGoogleIdentity(ctx context.Context, id uint64, googleID, fullName string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET google_id=?, full_name=IF(full_name='', ?, full_name) WHERE id=?",
		googleID, fullName, id)
	return err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByGoogleID fetches a user by its linked Google subject.
func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE google_id=? LIMIT 1", googleID)
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (User, error) {
	var (
		u        User
		pwHash   sql.NullString
		googleID sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &pwHash, &googleID, &u.FullName, &u.Role, &u.IsBlocked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	u.PasswordHash = pwHash.String
	u.GoogleID = googleID.String
	return u, nil
}
