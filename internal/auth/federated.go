package auth

import (
	"context"
	"errors"
	"log"

	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// ErrFederatedAuth is the single error surfaced to clients for every failure
// during federated sign-in: a bad assertion, a directory lookup error or a
// failed write. The flow is fail-closed on purpose; internal causes are
// logged, never returned, so a degraded dependency can never be mistaken
// for a valid sign-in.
var ErrFederatedAuth = errors.New("google authentication failed")

// FederatedIdentity is the verified payload of a third-party identity
// assertion.
type FederatedIdentity struct {
	Subject  string // provider-unique user id (Google's 'sub')
	Email    string
	FullName string
}

// IdentityVerifier checks the authenticity and freshness of an identity
// assertion against the external provider. *GoogleVerifier satisfies it.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (FederatedIdentity, error)
}

// FederatedIdentityBridge reconciles a verified external identity against
// the local user directory and issues tokens for the resulting account.
type FederatedIdentityBridge struct {
	verifier IdentityVerifier
	users    UserDirectory
	tokens   *TokenService
}

func NewFederatedIdentityBridge(verifier IdentityVerifier, users UserDirectory, tokens *TokenService) *FederatedIdentityBridge {
	return &FederatedIdentityBridge{verifier: verifier, users: users, tokens: tokens}
}

// Authenticate verifies the assertion, then resolves the account in order:
// by federated id (fast path, no writes), by email (adopt the federated id),
// and finally by creating a password-less account.
func (b *FederatedIdentityBridge) Authenticate(ctx context.Context, assertion string) (TokenPair, error) {
	fid, err := b.verifier.Verify(ctx, assertion)
	if err != nil {
		log.Printf("federated: assertion rejected: %v", err)
		return TokenPair{}, ErrFederatedAuth
	}

	u, err := b.users.GetByGoogleID(ctx, fid.Subject)
	switch {
	case err == nil:
		return b.issue(u)
	case !errors.Is(err, repository.ErrUserNotFound):
		log.Printf("federated: lookup by google id failed: %v", err)
		return TokenPair{}, ErrFederatedAuth
	}

	u, err = b.users.GetByEmail(ctx, fid.Email)
	switch {
	case err == nil:
		if err := b.users.AdoptGoogleIdentity(ctx, u.ID, fid.Subject, fid.FullName); err != nil {
			log.Printf("federated: linking google id failed: %v", err)
			return TokenPair{}, ErrFederatedAuth
		}
		return b.issue(u)
	case !errors.Is(err, repository.ErrUserNotFound):
		log.Printf("federated: lookup by email failed: %v", err)
		return TokenPair{}, ErrFederatedAuth
	}

	u, err = b.users.CreateFederated(ctx, fid.Email, fid.FullName, fid.Subject)
	if err != nil {
		log.Printf("federated: creating account failed: %v", err)
		return TokenPair{}, ErrFederatedAuth
	}
	return b.issue(u)
}

func (b *FederatedIdentityBridge) issue(u repository.User) (TokenPair, error) {
	pair, err := b.tokens.IssuePair(IdentityOf(u))
	if err != nil {
		log.Printf("federated: token issue failed: %v", err)
		return TokenPair{}, ErrFederatedAuth
	}
	return pair, nil
}
