package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testTokenService() *TokenService {
	return NewTokenService("test-secret", "restaurant-directory", "restaurant-directory-api",
		15*time.Minute, 7*24*time.Hour)
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	t.Parallel()
	svc := testTokenService()

	t.Run("access token round-trips the identity", func(t *testing.T) {
		pair, err := svc.IssuePair(Identity{UserID: 42, Email: "owner@example.com", Role: "OWNER"})
		require.NoError(t, err)
		require.NotEmpty(t, pair.Access.Token)
		require.NotEmpty(t, pair.Refresh.Token)

		id, err := svc.VerifyAccess(pair.Access.Token)
		require.NoError(t, err)
		require.Equal(t, uint64(42), id.UserID)
		require.Equal(t, "owner@example.com", id.Email)
		require.Equal(t, "OWNER", id.Role)
		require.False(t, id.Blocked)
	})

	t.Run("refresh token carries only the subject", func(t *testing.T) {
		pair, err := svc.IssuePair(Identity{UserID: 7, Email: "u@example.com", Role: "USER"})
		require.NoError(t, err)

		uid, err := svc.VerifyRefresh(pair.Refresh.Token)
		require.NoError(t, err)
		require.Equal(t, uint64(7), uid)

		// The refresh payload must not embed email or role.
		claims, err := svc.parse(pair.Refresh.Token)
		require.NoError(t, err)
		require.Empty(t, claims.Email)
		require.Empty(t, claims.Role)
	})

	t.Run("refresh expiry is longer than access expiry", func(t *testing.T) {
		pair, err := svc.IssuePair(Identity{UserID: 1, Role: "USER"})
		require.NoError(t, err)
		require.True(t, pair.Refresh.ExpiresAt.After(pair.Access.ExpiresAt))
	})
}

func TestTokenServiceVerifyFailures(t *testing.T) {
	t.Parallel()
	svc := testTokenService()
	pair, err := svc.IssuePair(Identity{UserID: 5, Email: "a@b.c", Role: "USER"})
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.VerifyAccess("not-a-token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("other-secret", svc.issuer, svc.audience, time.Minute, time.Hour)
		_, err := other.VerifyAccess(pair.Access.Token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := NewTokenService("test-secret", svc.issuer, "another-api", time.Minute, time.Hour)
		_, err := other.VerifyAccess(pair.Access.Token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenService("test-secret", "someone-else", svc.audience, time.Minute, time.Hour)
		_, err := other.VerifyAccess(pair.Access.Token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenService("test-secret", svc.issuer, svc.audience, -time.Minute, -time.Minute)
		p, err := expired.IssuePair(Identity{UserID: 5, Role: "USER"})
		require.NoError(t, err)
		_, err = svc.VerifyAccess(p.Access.Token)
		require.ErrorIs(t, err, ErrInvalidToken)
		_, err = svc.VerifyRefresh(p.Refresh.Token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("blocked account fails with the distinct error", func(t *testing.T) {
		p, err := svc.IssuePair(Identity{UserID: 9, Email: "x@y.z", Role: "USER", Blocked: true})
		require.NoError(t, err)
		_, err = svc.VerifyAccess(p.Access.Token)
		require.ErrorIs(t, err, ErrAccountBlocked)
	})
}
