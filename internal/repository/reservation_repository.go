package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations.  Stay dates are
// DATE columns; all timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationSelect = `SELECT id, code, room_id, user_id, check_in, check_out, guests, total_amount_cents, status, created_at, updated_at
                           FROM reservations`

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		res           model.Reservation
		checkIn, outT time.Time
	)
	err := s.Scan(&res.ID, &res.Code, &res.RoomID, &res.UserID, &checkIn, &outT,
		&res.Guests, &res.TotalAmountCents, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return res, err
	}
	res.CheckIn = model.Date(checkIn.UTC())
	res.CheckOut = model.Date(outT.UTC())
	return res, nil
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// HasOverlapTx reports whether the room already holds a non-cancelled
// reservation overlapping [checkIn, checkOut).  Call it after
// RoomRepo.LockForBookingTx so the answer stays true until commit.
func (r *ReservationRepo) HasOverlapTx(ctx context.Context, tx *sql.Tx, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations
               WHERE room_id = ? AND status <> ? AND check_in < ? AND check_out > ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, roomID, model.ReservationCancelled, checkOut, checkIn).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateTx inserts a reservation within the scope of an existing
// transaction and populates the generated ID and timestamps on res.  A
// taken code yields ErrReservationCodeUsed.  The caller must commit or
// rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (code, room_id, user_id, check_in, check_out, guests, total_amount_cents, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.Code, res.RoomID, res.UserID,
		res.CheckIn.String(), res.CheckOut.String(), res.Guests, res.TotalAmountCents, res.Status)
	if err != nil {
		if isDuplicate(err) {
			return ErrReservationCodeUsed
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	// Query back the full row to populate timestamps and defaults
	row, err := scanReservation(tx.QueryRowContext(ctx, reservationSelect+` WHERE id = ?`, id))
	if err != nil {
		return err
	}
	*res = row
	return nil
}

// UpdateStatusTx sets the reservation status inside tx.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// GetForUpdateTx loads and row-locks a reservation.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
	res, err := scanReservation(tx.QueryRowContext(ctx, reservationSelect+` WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrReservationNotFound
	}
	return res, err
}

// GetByID returns ErrReservationNotFound when no row matches.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, reservationSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrReservationNotFound
	}
	return res, err
}

// ListAll returns every reservation, newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	return r.list(ctx, reservationSelect+` ORDER BY created_at DESC, id DESC`)
}

// ListByUser returns the reservations made by userID, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.list(ctx, reservationSelect+` WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}
