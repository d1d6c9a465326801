package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure that is not the blocked
// case: bad signature, wrong issuer or audience, expiry, malformed claims.
var ErrInvalidToken = errors.New("invalid token")

// ErrAccountBlocked is returned when an otherwise valid access token carries
// the blocked flag. Callers must translate this into 403, not 401: the
// credential is genuine, the account just may not act.
var ErrAccountBlocked = errors.New("account is blocked")

// AccessClaims is the payload of an access token. Refresh tokens reuse the
// same struct but carry only the registered claims (subject, issuer,
// audience, timestamps).
type AccessClaims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	IsBlocked bool   `json:"isBlocked,omitempty"`
	jwt.RegisteredClaims
}

// SignedToken pairs a serialized JWT with its expiry so handlers can return
// both to the client.
type SignedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires"`
}

// TokenPair is the result of every successful sign-in or refresh.
type TokenPair struct {
	Access  SignedToken
	Refresh SignedToken
}

// TokenService issues and verifies HS256 tokens. Verification is pure
// computation: signature, issuer, audience and expiry checks, no storage.
type TokenService struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair issues an access token embedding the identity's email, role and
// blocked flag, plus a refresh token carrying only the subject id.
func (s *TokenService) IssuePair(id Identity) (TokenPair, error) {
	access, err := s.issueAccess(id)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issueRefresh(id.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *TokenService) issueAccess(id Identity) (SignedToken, error) {
	exp := time.Now().UTC().Add(s.accessTTL)
	claims := AccessClaims{
		Email:            id.Email,
		Role:             id.Role,
		IsBlocked:        id.Blocked,
		RegisteredClaims: s.registered(id.UserID, exp),
	}
	return s.sign(claims, exp)
}

func (s *TokenService) issueRefresh(userID uint64) (SignedToken, error) {
	exp := time.Now().UTC().Add(s.refreshTTL)
	return s.sign(AccessClaims{RegisteredClaims: s.registered(userID, exp)}, exp)
}

func (s *TokenService) registered(userID uint64, exp time.Time) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

func (s *TokenService) sign(claims AccessClaims, exp time.Time) (SignedToken, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, ExpiresAt: exp}, nil
}

// VerifyAccess checks signature, issuer, audience and expiry, then rejects
// blocked accounts with ErrAccountBlocked. All other failures collapse into
// ErrInvalidToken so callers cannot leak why a token was refused.
func (s *TokenService) VerifyAccess(raw string) (Identity, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return Identity{}, err
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	if claims.IsBlocked {
		return Identity{}, ErrAccountBlocked
	}
	return Identity{
		UserID:  userID,
		Email:   claims.Email,
		Role:    claims.Role,
		Blocked: claims.IsBlocked,
	}, nil
}

// VerifyRefresh validates a refresh token and returns the subject id it was
// issued for. Refresh tokens carry no role or blocked state on purpose; the
// refresh flow re-reads the user row for current values.
func (s *TokenService) VerifyRefresh(raw string) (uint64, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func (s *TokenService) parse(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC before touching the secret.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
