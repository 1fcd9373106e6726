package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// The interfaces below are satisfied by the repository package; tests
// substitute in-memory fakes.

type RoomStore interface {
	ListByStatus(ctx context.Context, status string) ([]model.AvailableRoom, error)
	ConflictingRoomIDs(ctx context.Context, checkIn, checkOut time.Time) ([]uint64, error)
	LockForBookingTx(ctx context.Context, tx *sql.Tx, roomID uint64) (model.AvailableRoom, error)
}

type ReservationStore interface {
	HasOverlapTx(ctx context.Context, tx *sql.Tx, roomID uint64, checkIn, checkOut time.Time) (bool, error)
	CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error)
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
}

type TransactionStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error
	GetByReservationID(ctx context.Context, reservationID uint64) (model.Transaction, error)
}

type UserStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, u *model.User, password string, cost int) error
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, ch repository.ProfileChanges) error
}

type RoleStore interface {
	GetByNameTx(ctx context.Context, tx *sql.Tx, name string) (model.Role, error)
	CreateTx(ctx context.Context, tx *sql.Tx, name string) (model.Role, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ConsumeRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// EventPublisher announces confirmed reservations to downstream consumers.
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}
