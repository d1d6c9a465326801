package auth

import (
	"context"
	"errors"

	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// RefreshCoordinator exchanges a valid refresh token for a brand-new token
// pair. Refresh tokens are stateless; there is no server-side denylist. The
// coordinator re-reads the user row so role or blocked changes made since
// the original login land in the new access token.
type RefreshCoordinator struct {
	users  UserDirectory
	tokens *TokenService
}

func NewRefreshCoordinator(users UserDirectory, tokens *TokenService) *RefreshCoordinator {
	return &RefreshCoordinator{users: users, tokens: tokens}
}

// Refresh verifies the token, reloads the subject and issues a fresh pair.
// Every failure collapses into ErrInvalidToken; the client only needs to
// know it must sign in again.
func (r *RefreshCoordinator) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := r.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, err
	}
	return r.tokens.IssuePair(IdentityOf(u))
}
