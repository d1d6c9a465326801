package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-directory/internal/repository"
)

func TestCredentialAuthenticatorSignIn(t *testing.T) {
	t.Parallel()
	svc := testTokenService()

	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)

	owner := repository.User{ID: 7, Email: "owner@example.com", PasswordHash: hash, Role: repository.RoleOwner}
	federated := repository.User{ID: 8, Email: "google-only@example.com", GoogleID: "g-123", Role: repository.RoleUser}

	t.Run("correct credentials return a pair with current claims", func(t *testing.T) {
		a := NewCredentialAuthenticator(newFakeDirectory(owner, federated), svc)
		pair, err := a.SignIn(context.Background(), "Owner@Example.com ", "s3cret")
		require.NoError(t, err)

		id, err := svc.VerifyAccess(pair.Access.Token)
		require.NoError(t, err)
		require.Equal(t, owner.ID, id.UserID)
		require.Equal(t, owner.Email, id.Email)
		require.Equal(t, repository.RoleOwner, id.Role)
	})

	t.Run("unknown email and wrong password fail identically", func(t *testing.T) {
		a := NewCredentialAuthenticator(newFakeDirectory(owner), svc)

		_, errUnknown := a.SignIn(context.Background(), "nobody@example.com", "whatever")
		_, errWrong := a.SignIn(context.Background(), "owner@example.com", "not-the-password")

		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		require.ErrorIs(t, errWrong, ErrInvalidCredentials)
		require.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("federation-only account fails distinctly", func(t *testing.T) {
		a := NewCredentialAuthenticator(newFakeDirectory(federated), svc)
		_, err := a.SignIn(context.Background(), "google-only@example.com", "anything")
		require.ErrorIs(t, err, ErrNoPassword)
		require.NotErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("corrupt stored hash is not reported as wrong credentials", func(t *testing.T) {
		broken := repository.User{ID: 9, Email: "broken@example.com", PasswordHash: "not-a-bcrypt-hash", Role: repository.RoleUser}
		a := NewCredentialAuthenticator(newFakeDirectory(broken), svc)
		_, err := a.SignIn(context.Background(), "broken@example.com", "anything")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("directory failure is passed through", func(t *testing.T) {
		dir := newFakeDirectory(owner)
		dir.lookupErr = errStorage
		a := NewCredentialAuthenticator(dir, svc)
		_, err := a.SignIn(context.Background(), "owner@example.com", "s3cret")
		require.ErrorIs(t, err, errStorage)
	})
}
