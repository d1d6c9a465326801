// Package auth implements token issuance and the sign-in flows: password
// credentials, Google federated identity and refresh-token exchange. It
// talks to user storage only through the narrow UserDirectory interface so
// the flows can be exercised against in-memory fakes.
package auth

import (
	"context"

	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// Identity is the resolved caller carried by an access token and attached
// to a request after authentication. It is a plain value; once built it is
// never mutated.
type Identity struct {
	UserID  uint64
	Email   string
	Role    string
	Blocked bool
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == repository.RoleAdmin }

// IdentityOf builds the token-facing identity from a stored user row.
func IdentityOf(u repository.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role, Blocked: u.IsBlocked}
}

// UserDirectory is the slice of user persistence the auth flows need.
// *repository.UserRepo satisfies it; tests substitute in-memory fakes.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uint64) (repository.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (repository.User, error)
	AdoptGoogleIdentity(ctx context.Context, id uint64, googleID, fullName string) error
	CreateFederated(ctx context.Context, email, fullName, googleID string) (repository.User, error)
}
