package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

type ProfileService interface {
	Profile(ctx context.Context, userID uint64) (model.User, error)
	UpdateProfile(ctx context.Context, userID uint64, in service.ProfileInput) (model.User, error)
}

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	Profiles ProfileService
	Log      *zap.Logger
}

func NewProfileHandler(p ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{Profiles: p, Log: log}
}

// username is accepted so clients can echo the profile back, but ignored.
type updateProfileReq struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
}

func (h *ProfileHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Profiles.Profile(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toProfile(u))
}

// Update serves both PUT and PATCH; only the fields present are changed.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateProfileReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	u, err := h.Profiles.UpdateProfile(c.Request().Context(), userID, service.ProfileInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toProfile(u))
}
