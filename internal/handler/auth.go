package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/auth"
	"github.com/nyumbalink/nyumbalink/internal/config"
	"github.com/nyumbalink/nyumbalink/internal/httpx"
	"github.com/nyumbalink/nyumbalink/internal/middleware"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/repository"
	"github.com/nyumbalink/nyumbalink/internal/utils"
	"github.com/nyumbalink/nyumbalink/internal/validation"
)

// AuthHandler bundles dependencies for auth and profile endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Phone    string `json:"phone" validate:"omitempty,tzphone"`
	Role     string `json:"role" validate:"omitempty,oneof=TENANT PROPERTY_ADMIN tenant property_admin"`
	Language string `json:"language" validate:"omitempty,oneof=en sw"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type profileReq struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,tzphone"`
	Language *string `json:"language" validate:"omitempty,oneof=en sw"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    model.User `json:"user"`
	Access  tokenPart  `json:"access"`
	Refresh tokenPart  `json:"refresh"`
}

// Register: create user and return tokens immediately.  Only tenant and
// property admin accounts can be created here; super admins are promoted
// with nyumbactl.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	role := model.RoleTenant
	if req.Role != "" {
		r, ok := model.ParseRole(req.Role)
		if !ok || !r.SelfAssignable() {
			return fail(c, http.StatusBadRequest, "invalid_role")
		}
		role = r
	}
	if err := utils.CheckPasswordStrength(req.Password); err != nil {
		return fail(c, http.StatusBadRequest, "weak_password")
	}
	lang := req.Language
	if lang == "" {
		lang = httpx.Lang(c)
	}
	u := model.User{
		Email:    req.Email,
		FullName: strings.TrimSpace(req.FullName),
		Role:     role,
		Language: lang,
	}
	if p := validation.NormalizePhone(req.Phone); p != "" {
		u.Phone = &p
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.Create(ctx, &u, req.Password, h.Cfg.BcryptCost); err != nil {
		return storeError(c, err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return issueFailed(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid_credentials")
		}
		return storeError(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid_credentials")
	}
	if !u.IsActive {
		return fail(c, http.StatusForbidden, "account_disabled")
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return issueFailed(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates: the presented token is revoked before a new pair is
// issued, and a lost race on the revoke is a 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	u, hash, err := h.refreshUser(c)
	if u == nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return storeError(c, err)
	}
	resp, err := h.issue(c, *u)
	if err != nil {
		return issueFailed(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess: validate a refresh token and return a new access token
// WITHOUT rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	u, _, err := h.refreshUser(c)
	if u == nil {
		return err
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes tokens.  A valid Bearer access token signs the user out
// everywhere; otherwise a refresh_token in the body revokes that one
// session.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if raw, ok := middleware.BearerToken(c); ok {
		claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw)
		if err != nil {
			return unauthorized(c)
		}
		if err := h.Tokens.RevokeAllForUser(ctx, claims.UserID); err != nil {
			return storeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "logout_required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, s.UserID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMe changes name, phone or preferred language.  Sending an empty
// phone clears it.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_body")
	}
	if req.Phone != nil {
		p := validation.NormalizePhone(*req.Phone)
		req.Phone = &p
	}
	if err := c.Validate(&req); err != nil {
		return httpx.Validation(c, err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, s.UserID, repository.ProfileUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
		Language: req.Language,
	})
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// refreshUser resolves the user behind the refresh_token in the body.  A
// nil user means the response has been written.
func (h *AuthHandler) refreshUser(c echo.Context) (*model.User, string, error) {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return nil, "", fail(c, http.StatusBadRequest, "refresh_required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := dbCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return nil, "", fail(c, http.StatusUnauthorized, "invalid_refresh")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", storeError(c, err)
	}
	if !u.IsActive {
		return nil, "", fail(c, http.StatusForbidden, "account_disabled")
	}
	return &u, hash, nil
}

// issue creates an access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(c echo.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

func issueFailed(c echo.Context, err error) error {
	c.Logger().Errorf("issue tokens: %v", err)
	return fail(c, http.StatusInternalServerError, "internal_error")
}
