package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// CreateReservationInput is a booking request after payload validation.
type CreateReservationInput struct {
	RoomID   uint64
	CheckIn  string
	CheckOut string
	Guests   uint8
}

// BookingResult is the confirmed reservation and its payment record.
type BookingResult struct {
	Reservation model.Reservation
	Transaction model.Transaction
}

// ReservationDetail pairs a reservation with its payment, when one exists.
type ReservationDetail struct {
	Reservation model.Reservation
	Transaction *model.Transaction
}

// BookingService creates, reads and cancels reservations.
type BookingService struct {
	tx           database.TxRunner
	rooms        RoomStore
	reservations ReservationStore
	transactions TransactionStore
	gateway      PaymentGateway
	events       EventPublisher // optional
	log          *zap.Logger

	NewCode func() string
	Now     func() time.Time
}

func NewBookingService(tx database.TxRunner, rooms RoomStore, reservations ReservationStore, transactions TransactionStore,
	gateway PaymentGateway, events EventPublisher, log *zap.Logger) *BookingService {
	return &BookingService{
		tx:           tx,
		rooms:        rooms,
		reservations: reservations,
		transactions: transactions,
		gateway:      gateway,
		events:       events,
		log:          log,
		NewCode:      NewReservationCode,
		Now:          time.Now,
	}
}

// NewReservationCode returns a short human-readable unique code such as
// RSV-3F2A9C01BE.
func NewReservationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RSV-" + strings.ToUpper(raw[:10])
}

// codeAttempts is how many reservation codes Create tries before giving up
// on a unique-key collision.
const codeAttempts = 3

// stayTotal prices nights at perNight cents, rejecting totals the
// reservations table cannot store.
func stayTotal(nights int, perNight uint32) (uint32, error) {
	total := uint64(nights) * uint64(perNight)
	if total > math.MaxUint32 {
		return 0, NewValidationError("check_out", "stay total exceeds the maximum chargeable amount")
	}
	return uint32(total), nil
}

// Create books a room.  The reservation insert, the payment transaction and
// the CONFIRMED status update commit together or not at all.
func (s *BookingService) Create(ctx context.Context, userID uint64, in CreateReservationInput) (BookingResult, error) {
	if in.RoomID == 0 {
		return BookingResult{}, NewValidationError("room_id", "room_id is required")
	}
	stay, err := ParseStay(in.CheckIn, in.CheckOut)
	if err != nil {
		return BookingResult{}, err
	}
	guests := in.Guests
	if guests == 0 {
		guests = 1
	}

	var (
		out  BookingResult
		room model.AvailableRoom
	)
	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		room, err = s.rooms.LockForBookingTx(ctx, tx, in.RoomID)
		if err != nil {
			return err
		}
		if room.Status != model.RoomFree {
			return ErrRoomNotFree
		}
		if room.Capacity > 0 && guests > room.Capacity {
			return NewValidationError("guests", fmt.Sprintf("room %s holds at most %d guests", room.Number, room.Capacity))
		}
		overlap, err := s.reservations.HasOverlapTx(ctx, tx, room.ID, stay.CheckIn, stay.CheckOut)
		if err != nil {
			return fmt.Errorf("overlap check: %w", err)
		}
		if overlap {
			return ErrRoomUnavailable
		}

		total, err := stayTotal(stay.Nights(), room.PricePerNightCents)
		if err != nil {
			return err
		}

		res := model.Reservation{
			RoomID:           room.ID,
			UserID:           userID,
			CheckIn:          model.Date(stay.CheckIn),
			CheckOut:         model.Date(stay.CheckOut),
			Guests:           guests,
			TotalAmountCents: total,
			Status:           model.ReservationPending,
		}
		for attempt := 1; ; attempt++ {
			res.Code = s.NewCode()
			err = s.reservations.CreateTx(ctx, tx, &res)
			if !errors.Is(err, repository.ErrReservationCodeUsed) || attempt == codeAttempts {
				break
			}
			s.log.Warn("reservation code collision, regenerating", zap.String("code", res.Code), zap.Int("attempt", attempt))
		}
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}

		pay, err := s.gateway.Authorize(ctx, PaymentRequest{
			ReservationID: res.ID,
			BuyOrder:      res.Code,
			AmountCents:   res.TotalAmountCents,
		})
		if err != nil {
			return fmt.Errorf("authorize payment: %w", err)
		}
		if pay.Status != model.PaymentApproved {
			return ErrPaymentDeclined
		}
		trx := model.Transaction{
			ReservationID:     res.ID,
			AmountCents:       res.TotalAmountCents,
			BuyOrder:          res.Code,
			GatewayToken:      pay.Token,
			Status:            pay.Status,
			AuthorizationCode: pay.AuthorizationCode,
		}
		if err := s.transactions.CreateTx(ctx, tx, &trx); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		if err := s.reservations.UpdateStatusTx(ctx, tx, res.ID, model.ReservationConfirmed); err != nil {
			return fmt.Errorf("confirm reservation: %w", err)
		}
		res.Status = model.ReservationConfirmed

		out = BookingResult{Reservation: res, Transaction: trx}
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}

	s.log.Info("reservation confirmed",
		zap.Uint64("reservation_id", out.Reservation.ID),
		zap.String("code", out.Reservation.Code),
		zap.Uint64("room_id", room.ID),
		zap.Uint64("transaction_id", out.Transaction.ID),
	)
	s.publishConfirmed(ctx, out, room)
	return out, nil
}

func (s *BookingService) publishConfirmed(ctx context.Context, b BookingResult, room model.AvailableRoom) {
	if s.events == nil {
		return
	}
	res := b.Reservation
	ev := queue.ReservationConfirmedEvent{
		ReservationID:    res.ID,
		Code:             res.Code,
		UserID:           res.UserID,
		RoomID:           room.ID,
		RoomNumber:       room.Number,
		RoomType:         room.RoomTypeName,
		CheckIn:          res.CheckIn.String(),
		CheckOut:         res.CheckOut.String(),
		Nights:           model.Nights(res.CheckIn.Time(), res.CheckOut.Time()),
		TotalAmountCents: res.TotalAmountCents,
		TransactionID:    b.Transaction.ID,
		ConfirmedAt:      s.Now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.events.PublishReservationConfirmed(ctx, ev); err != nil {
		s.log.Warn("publish reservation.confirmed failed", zap.Uint64("reservation_id", res.ID), zap.Error(err))
	}
}

// Get returns a reservation with its payment record.
func (s *BookingService) Get(ctx context.Context, id uint64) (ReservationDetail, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return ReservationDetail{}, err
	}
	det := ReservationDetail{Reservation: res}
	trx, err := s.transactions.GetByReservationID(ctx, id)
	switch {
	case err == nil:
		det.Transaction = &trx
	case errors.Is(err, repository.ErrTransactionNotFound):
	default:
		return ReservationDetail{}, fmt.Errorf("load transaction: %w", err)
	}
	return det, nil
}

// List returns every reservation.
func (s *BookingService) List(ctx context.Context) ([]model.Reservation, error) {
	return s.reservations.ListAll(ctx)
}

// ListMine returns the caller's reservations.
func (s *BookingService) ListMine(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return s.reservations.ListByUser(ctx, userID)
}

// Cancel marks the caller's reservation CANCELLED, freeing its dates.
func (s *BookingService) Cancel(ctx context.Context, userID, id uint64) (model.Reservation, error) {
	var out model.Reservation
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := s.reservations.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if res.UserID != userID {
			return ErrForbidden
		}
		if res.Status == model.ReservationCancelled {
			return ErrAlreadyCancelled
		}
		if err := s.reservations.UpdateStatusTx(ctx, tx, id, model.ReservationCancelled); err != nil {
			return err
		}
		res.Status = model.ReservationCancelled
		out = res
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.log.Info("reservation cancelled", zap.Uint64("reservation_id", id), zap.Uint64("user_id", userID))
	return out, nil
}
