package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/config"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/token"
	"github.com/iliyamo/marketplace-api/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *token.Service
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, tokens *token.Service) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // ADMIN | CUSTOMER
}
type loginReq struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}
type refreshReq struct {
	UserID       uint64 `json:"user_id"`
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates a user and returns a token pair immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != model.RoleAdmin && role != model.RoleCustomer {
		role = model.RoleCustomer
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		case errors.Is(err, repository.ErrNameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		return respondErr(c, err)
	}

	return h.issuePair(c, http.StatusCreated, model.User{ID: uid, Name: req.Name, Email: req.Email, Role: role})
}

// Login verifies credentials and returns a fresh token pair. The login
// field matches either the unique name or the email.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	login := strings.TrimSpace(req.UsernameOrEmail)
	if login == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username_or_email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return respondErr(c, err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	return h.issuePair(c, http.StatusOK, u)
}

// Refresh validates the presented refresh token and, on success, rotates
// it and returns a new pair. The old refresh value stops working the
// moment the new one is stored.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id/refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tokens.ValidateRefresh(ctx, req.UserID, strings.TrimSpace(req.RefreshToken)); err != nil {
		return respondErr(c, err)
	}

	u, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	return h.issuePair(c, http.StatusOK, u)
}

// Logout revokes the caller's refresh token. The current access token
// stays valid until it expires on its own.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, id.UserID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated caller's account record.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
}

// issuePair signs an access token, rotates the refresh token and writes
// the combined response.
func (h *AuthHandler) issuePair(c echo.Context, status int, u model.User) error {
	access, err := h.Tokens.IssueAccessToken(token.Claims{
		UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
	})
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	refresh, err := h.Tokens.RotateRefresh(ctx, u.ID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(status, authResp{
		User:    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}
