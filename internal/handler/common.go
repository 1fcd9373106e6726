// Package handler exposes the HTTP handlers.  Handlers bind and validate
// payloads, call the service layer and map its errors to HTTP responses.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

var errNoUser = errors.New("invalid user_id in context")

// getUserID reads the user id JWTAuth stored in the context.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get(middleware.CtxUserID).(uint64); ok && id != 0 {
		return id, nil
	}
	return 0, errNoUser
}

func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
}

// bindAndValidate binds the request into dst and runs the registered
// validator.  On failure the 400 response has already been written and ok
// is false.
func bindAndValidate(c echo.Context, dst any) (ok bool, err error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(dst); err != nil {
		if fields := fieldErrors(err); fields != nil {
			return false, c.JSON(http.StatusBadRequest, echo.Map{"errors": fields})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return true, nil
}

// writeServiceError maps service and repository errors to HTTP responses.
// Anything unrecognised is logged and reported as a generic 500.
func writeServiceError(c echo.Context, log *zap.Logger, err error) error {
	var (
		ve *service.ValidationError
		ae *service.AuthError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": ve.Fields})
	case errors.As(err, &ae):
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": ae.Message, "code": ae.Code})
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrRoomTypeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room type not found"})
	case errors.Is(err, repository.ErrServiceNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, service.ErrRoomUnavailable),
		errors.Is(err, service.ErrRoomNotFree),
		errors.Is(err, service.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": rootMessage(err)})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrPaymentDeclined):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment declined"})
	case errors.Is(err, service.ErrDefaultRoleMissing):
		log.Error("registration misconfigured", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

func rootMessage(err error) string {
	for _, target := range []error{service.ErrRoomUnavailable, service.ErrRoomNotFree, service.ErrAlreadyCancelled} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
