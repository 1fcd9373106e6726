package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// TransactionRepo stores the payment attempt recorded for each reservation.
type TransactionRepo struct{ db *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// CreateTx inserts t inside tx and sets its ID.  reservation_id is unique,
// so at most one transaction exists per reservation.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	const q = `INSERT INTO transactions (reservation_id, amount_cents, buy_order, gateway_token, status, authorization_code)
               VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, t.ReservationID, t.AmountCents, t.BuyOrder, t.GatewayToken, t.Status, t.AuthorizationCode)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByReservationID returns ErrTransactionNotFound when the reservation has
// no payment record.
func (r *TransactionRepo) GetByReservationID(ctx context.Context, reservationID uint64) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.QueryRowContext(ctx,
		`SELECT id, reservation_id, amount_cents, buy_order, gateway_token, status, authorization_code, created_at
         FROM transactions WHERE reservation_id = ?`, reservationID).
		Scan(&t.ID, &t.ReservationID, &t.AmountCents, &t.BuyOrder, &t.GatewayToken, &t.Status, &t.AuthorizationCode, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrTransactionNotFound
	}
	return t, err
}
