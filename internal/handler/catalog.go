package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

type RoomTypeReader interface {
	ListAll(ctx context.Context) ([]model.RoomType, error)
	GetByID(ctx context.Context, id uint64) (model.RoomType, error)
}

type ServiceReader interface {
	ListAll(ctx context.Context) ([]model.Service, error)
	GetByID(ctx context.Context, id uint64) (model.Service, error)
}

// CatalogHandler serves the read-only reference data.
type CatalogHandler struct {
	RoomTypes RoomTypeReader
	Services  ServiceReader
	Log       *zap.Logger
}

func NewCatalogHandler(rt RoomTypeReader, sv ServiceReader, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{RoomTypes: rt, Services: sv, Log: log}
}

func (h *CatalogHandler) ListRoomTypes(c echo.Context) error {
	items, err := h.RoomTypes.ListAll(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) GetRoomType(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	rt, err := h.RoomTypes.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rt)
}

func (h *CatalogHandler) ListServices(c echo.Context) error {
	items, err := h.Services.ListAll(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) GetService(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	s, err := h.Services.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}
