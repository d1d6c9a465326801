package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	jwksCacheTTL  = 30 * time.Minute
)

// Google signs ID tokens under either issuer spelling.
var googleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// GoogleVerifier validates Google ID tokens: RS256 signature against
// Google's published JWKS, issuer, audience (the OAuth client id) and
// expiry. The key set is cached and refetched when it goes stale or an
// unknown key id shows up (key rotation).
type GoogleVerifier struct {
	clientID string
	jwksURL  string
	issuers  []string
	client   *http.Client

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		jwksURL:  googleJWKSURL,
		issuers:  googleIssuers,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// googleClaims are the ID-token fields the bridge consumes.
type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// Verify parses and validates the ID token and returns the federated
// identity it asserts.
func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (FederatedIdentity, error) {
	claims := &googleClaims{}
	tok, err := jwt.ParseWithClaims(assertion, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no key id")
		}
		return v.keyFor(ctx, kid)
	},
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return FederatedIdentity{}, fmt.Errorf("id token rejected: %w", err)
	}
	if !issuedByGoogle(claims.Issuer, v.issuers) {
		return FederatedIdentity{}, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if claims.Subject == "" || claims.Email == "" {
		return FederatedIdentity{}, errors.New("id token missing subject or email")
	}
	if !claims.EmailVerified {
		return FederatedIdentity{}, errors.New("google account email not verified")
	}
	return FederatedIdentity{
		Subject:  claims.Subject,
		Email:    strings.ToLower(claims.Email),
		FullName: claims.Name,
	}, nil
}

func issuedByGoogle(iss string, accepted []string) bool {
	for _, a := range accepted {
		if iss == a {
			return true
		}
	}
	return false
}

// keyFor returns the RSA public key for the given key id, refreshing the
// cached JWKS when the id is unknown or the cache is stale.
func (v *GoogleVerifier) keyFor(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if key, ok := v.keys[kid]; ok && time.Since(v.fetchedAt) < jwksCacheTTL {
		return key, nil
	}
	if err := v.refreshLocked(ctx); err != nil {
		return nil, err
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no key for kid %q", kid)
	}
	return key, nil
}

// jwks mirrors the relevant subset of an RFC 7517 key set.
type jwks struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (v *GoogleVerifier) refreshLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decoding jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaKeyFrom(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks contained no usable RSA keys")
	}
	v.keys = keys
	v.fetchedAt = time.Now()
	return nil
}

func rsaKeyFrom(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, err
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}
