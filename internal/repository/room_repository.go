package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomRepo reads rooms joined with their room type.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a RoomRepo bound to db.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomSelect = `SELECT r.id, r.number, r.floor, r.status, r.room_type_id, t.name, t.capacity, t.price_per_night_cents
                    FROM rooms r
                    JOIN room_types t ON t.id = r.room_type_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(s rowScanner) (model.AvailableRoom, error) {
	var r model.AvailableRoom
	err := s.Scan(&r.ID, &r.Number, &r.Floor, &r.Status, &r.RoomTypeID, &r.RoomTypeName, &r.Capacity, &r.PricePerNightCents)
	return r, err
}

// ListByStatus returns all rooms in the given physical status ordered by id.
func (r *RoomRepo) ListByStatus(ctx context.Context, status string) ([]model.AvailableRoom, error) {
	rows, err := r.db.QueryContext(ctx, roomSelect+` WHERE r.status = ? ORDER BY r.id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AvailableRoom, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// ConflictingRoomIDs returns the distinct ids of rooms holding a
// non-cancelled reservation whose stay overlaps [checkIn, checkOut).
func (r *RoomRepo) ConflictingRoomIDs(ctx context.Context, checkIn, checkOut time.Time) ([]uint64, error) {
	const q = `SELECT DISTINCT room_id
               FROM reservations
               WHERE status <> ? AND check_in < ? AND check_out > ?`
	rows, err := r.db.QueryContext(ctx, q, model.ReservationCancelled, checkOut, checkIn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LockForBookingTx loads a room and takes a row lock on it for the rest of
// the transaction.  Concurrent bookings of the same room queue on this lock.
func (r *RoomRepo) LockForBookingTx(ctx context.Context, tx *sql.Tx, roomID uint64) (model.AvailableRoom, error) {
	room, err := scanRoom(tx.QueryRowContext(ctx, roomSelect+` WHERE r.id = ? FOR UPDATE`, roomID))
	if errors.Is(err, sql.ErrNoRows) {
		return room, ErrRoomNotFound
	}
	return room, err
}
