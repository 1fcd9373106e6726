package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

type Authenticator interface {
	Login(ctx context.Context, username, password string) (service.Session, error)
	Refresh(ctx context.Context, raw string) (service.Session, error)
	Logout(ctx context.Context, raw string) error
	LogoutAll(ctx context.Context, userID uint64) error
	Register(ctx context.Context, in service.RegisterInput) (service.RegisterResult, error)
}

// AuthHandler serves login, token refresh/logout and registration.
type AuthHandler struct {
	Auth Authenticator
	Log  *zap.Logger
}

func NewAuthHandler(a Authenticator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: a, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	Refresh string `json:"refresh" validate:"required"`
}

type registerReq struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Phone     string `json:"phone" validate:"max=20"`
}

type sessionResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	UserID  uint64 `json:"user_id"`
	Rol     string `json:"rol"`
}

type profileResp struct {
	ID        uint64   `json:"id,omitempty"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Rol       string   `json:"rol,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

func toSession(s service.Session) sessionResp {
	return sessionResp{Access: s.Tokens.Access.Token, Refresh: s.Tokens.Refresh.Token, UserID: s.UserID, Rol: s.Rol}
}

func toProfile(u model.User) profileResp {
	return profileResp{Username: u.Username, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
}

// Login: verify credentials and return a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Auth.Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toSession(s))
}

// Refresh: revoke the presented refresh token and issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Auth.Refresh(ctx, req.Refresh)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toSession(s))
}

// Logout: revoke a refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if err := h.Auth.Logout(c.Request().Context(), req.Refresh); err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll: revoke every refresh token of the authenticated user.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Auth.LogoutAll(c.Request().Context(), userID); err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Register: create a user with the default role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Auth.Register(ctx, service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	resp := toProfile(out.User)
	resp.ID = out.User.ID
	resp.Rol = out.User.RoleClaim()
	resp.Warnings = out.Warnings
	return c.JSON(http.StatusCreated, resp)
}
