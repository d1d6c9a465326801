package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-directory/internal/auth"
	"github.com/iliyamo/restaurant-directory/internal/config"
	"github.com/iliyamo/restaurant-directory/internal/middleware"
	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Tokens  *auth.TokenService
	Creds   *auth.CredentialAuthenticator
	Google  *auth.FederatedIdentityBridge
	Refresh *auth.RefreshCoordinator
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, tokens *auth.TokenService,
	creds *auth.CredentialAuthenticator, google *auth.FederatedIdentityBridge, refresh *auth.RefreshCoordinator) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, Creds: creds, Google: google, Refresh: refresh}
}

// ----- DTOs -----

type signUpReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"` // USER | OWNER
}
type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type googleReq struct {
	Token string `json:"token"` // Google ID token
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type tokenResp struct {
	Access  auth.SignedToken `json:"access"`
	Refresh auth.SignedToken `json:"refresh"`
}

func pairResp(pair auth.TokenPair) tokenResp {
	return tokenResp{Access: pair.Access, Refresh: pair.Refresh}
}

// SignUp creates a password-based account and returns tokens immediately.
// ADMIN is never self-assignable; unknown roles default to USER.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != repository.RoleOwner {
		role = repository.RoleUser
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, hash, strings.TrimSpace(req.FullName), role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	pair, err := h.Tokens.IssuePair(auth.Identity{UserID: uid, Email: req.Email, Role: role})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user":   userPart{ID: uid, Email: req.Email, Role: role},
		"tokens": pairResp(pair),
	})
}

// SignIn validates email/password and returns a new token pair. Unknown
// email and wrong password produce the identical 401 body so responses
// cannot be used to probe which accounts exist.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Creds.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrInvalidCredentials.Error()})
		case errors.Is(err, auth.ErrNoPassword):
			// Federation-only account: there is nothing to compare against.
			return c.JSON(http.StatusRequestTimeout, echo.Map{"error": "cannot compare credentials"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign in failed"})
		}
	}
	return c.JSON(http.StatusOK, pairResp(pair))
}

// RefreshTokens exchanges a valid refresh token for a brand-new pair.
func (h *AuthHandler) RefreshTokens(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Refresh.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, pairResp(pair))
}

// GoogleAuthentication signs a user in with a Google ID token, creating or
// linking the local account as needed. All failures surface as a single 401.
func (h *AuthHandler) GoogleAuthentication(c echo.Context) error {
	var req googleReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	pair, err := h.Google.Authenticate(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrFederatedAuth.Error()})
	}
	return c.JSON(http.StatusOK, pairResp(pair))
}

// Me echoes the authenticated identity resolved by the guard.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, userPart{ID: id.UserID, Email: id.Email, Role: id.Role})
}
