package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testClientID = "client-1.apps.googleusercontent.com"

// newJWKSServer serves a one-key JWKS for the given RSA key.
func newJWKSServer(t *testing.T, kid string, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()
	set := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": kid,
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func googleTestClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testClientID,
		"sub":            "g-123456",
		"email":          "Diner@Example.com",
		"email_verified": true,
		"name":           "Diner Dan",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func TestGoogleVerifier(t *testing.T) {
	t.Parallel()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := newJWKSServer(t, "kid-1", &key.PublicKey)

	newVerifier := func() *GoogleVerifier {
		v := NewGoogleVerifier(testClientID)
		v.jwksURL = srv.URL
		return v
	}

	t.Run("valid id token yields the federated identity", func(t *testing.T) {
		v := newVerifier()
		fid, err := v.Verify(context.Background(), signIDToken(t, key, "kid-1", googleTestClaims()))
		require.NoError(t, err)
		require.Equal(t, "g-123456", fid.Subject)
		require.Equal(t, "diner@example.com", fid.Email) // lower-cased
		require.Equal(t, "Diner Dan", fid.FullName)
	})

	t.Run("wrong audience is rejected", func(t *testing.T) {
		claims := googleTestClaims()
		claims["aud"] = "someone-else"
		_, err := newVerifier().Verify(context.Background(), signIDToken(t, key, "kid-1", claims))
		require.Error(t, err)
	})

	t.Run("wrong issuer is rejected", func(t *testing.T) {
		claims := googleTestClaims()
		claims["iss"] = "https://evil.example.com"
		_, err := newVerifier().Verify(context.Background(), signIDToken(t, key, "kid-1", claims))
		require.Error(t, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		claims := googleTestClaims()
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		_, err := newVerifier().Verify(context.Background(), signIDToken(t, key, "kid-1", claims))
		require.Error(t, err)
	})

	t.Run("unverified email is rejected", func(t *testing.T) {
		claims := googleTestClaims()
		claims["email_verified"] = false
		_, err := newVerifier().Verify(context.Background(), signIDToken(t, key, "kid-1", claims))
		require.Error(t, err)
	})

	t.Run("unknown key id is rejected", func(t *testing.T) {
		_, err := newVerifier().Verify(context.Background(), signIDToken(t, key, "kid-rotated", googleTestClaims()))
		require.Error(t, err)
	})

	t.Run("HMAC-signed token is rejected before key lookup", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, googleTestClaims())
		tok.Header["kid"] = "kid-1"
		signed, err := tok.SignedString([]byte("guessable"))
		require.NoError(t, err)
		_, err = newVerifier().Verify(context.Background(), signed)
		require.Error(t, err)
	})
}
