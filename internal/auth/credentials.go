package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// ErrInvalidCredentials is deliberately identical for unknown emails and
// wrong passwords so sign-in responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("incorrect email or password")

// ErrNoPassword marks accounts that only ever signed in through Google:
// there is no hash to compare against. It is distinct from
// ErrInvalidCredentials because the client should be told to use federated
// sign-in, not that the password was wrong.
var ErrNoPassword = errors.New("account has no password set")

// CredentialAuthenticator validates email/password pairs and issues token
// pairs for the matching user.
type CredentialAuthenticator struct {
	users  UserDirectory
	tokens *TokenService
}

func NewCredentialAuthenticator(users UserDirectory, tokens *TokenService) *CredentialAuthenticator {
	return &CredentialAuthenticator{users: users, tokens: tokens}
}

// SignIn looks the user up by email, compares the password and issues a
// token pair embedding the user's current email, role and blocked state.
func (a *CredentialAuthenticator) SignIn(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if u.PasswordHash == "" {
		return TokenPair{}, ErrNoPassword
	}
	if err := ComparePassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return TokenPair{}, ErrInvalidCredentials
		}
		// Comparison infrastructure failure (e.g. corrupt hash), not a
		// wrong credential.
		return TokenPair{}, err
	}
	return a.tokens.IssuePair(IdentityOf(u))
}
