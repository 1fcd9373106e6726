package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

type AvailabilityFinder interface {
	Available(ctx context.Context, checkIn, checkOut string) (service.StayRange, []model.AvailableRoom, error)
}

type ReservationService interface {
	Create(ctx context.Context, userID uint64, in service.CreateReservationInput) (service.BookingResult, error)
	Get(ctx context.Context, id uint64) (service.ReservationDetail, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ListMine(ctx context.Context, userID uint64) ([]model.Reservation, error)
	Cancel(ctx context.Context, userID, id uint64) (model.Reservation, error)
}

// ReservationHandler serves availability lookup and the reservation
// resource.
type ReservationHandler struct {
	Availability AvailabilityFinder
	Bookings     ReservationService
	Log          *zap.Logger
}

func NewReservationHandler(a AvailabilityFinder, b ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{Availability: a, Bookings: b, Log: log}
}

type createReservationReq struct {
	RoomID   uint64 `json:"room_id" validate:"required,gt=0"`
	CheckIn  string `json:"check_in" validate:"required,isodate"`
	CheckOut string `json:"check_out" validate:"required,isodate"`
	Guests   uint8  `json:"guests" validate:"omitempty,min=1,max=10"`
}

type reservationDetailResp struct {
	model.Reservation
	Transaction *model.Transaction `json:"transaction"`
}

// GetAvailability handles GET /reservations/availability?check_in=&check_out=.
func (h *ReservationHandler) GetAvailability(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, rooms, err := h.Availability.Available(ctx, c.QueryParam("check_in"), c.QueryParam("check_out"))
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	if rooms == nil {
		rooms = []model.AvailableRoom{}
	}
	return c.JSON(http.StatusOK, rooms)
}

// Create handles POST /reservations for the authenticated user.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	out, err := h.Bookings.Create(ctx, userID, service.CreateReservationInput{
		RoomID:   req.RoomID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guests:   req.Guests,
	})
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":        "Reservation confirmed and payment approved",
		"reservation":    out.Reservation,
		"transaction_id": out.Transaction.ID,
	})
}

// List handles GET /reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	items, err := h.Bookings.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Mine handles GET /reservations/mine.
func (h *ReservationHandler) Mine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListMine(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /reservations/:id and embeds the payment transaction.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	det, err := h.Bookings.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, reservationDetailResp{Reservation: det.Reservation, Transaction: det.Transaction})
}

// Cancel handles DELETE /reservations/:id for the reservation owner.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	res, err := h.Bookings.Cancel(c.Request().Context(), userID, id)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation cancelled", "reservation": res})
}
