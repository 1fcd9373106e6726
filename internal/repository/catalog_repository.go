package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomTypeRepo serves the read-only room type catalog.
type RoomTypeRepo struct{ db *sql.DB }

func NewRoomTypeRepo(db *sql.DB) *RoomTypeRepo { return &RoomTypeRepo{db: db} }

const roomTypeSelect = `SELECT id, name, description, capacity, price_per_night_cents, created_at FROM room_types`

// ListAll returns every room type ordered by id.
func (r *RoomTypeRepo) ListAll(ctx context.Context) ([]model.RoomType, error) {
	rows, err := r.db.QueryContext(ctx, roomTypeSelect+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RoomType, 0)
	for rows.Next() {
		var t model.RoomType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Capacity, &t.PricePerNightCents, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID returns ErrRoomTypeNotFound when no row matches.
func (r *RoomTypeRepo) GetByID(ctx context.Context, id uint64) (model.RoomType, error) {
	var t model.RoomType
	err := r.db.QueryRowContext(ctx, roomTypeSelect+` WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.Capacity, &t.PricePerNightCents, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrRoomTypeNotFound
	}
	return t, err
}

// ServiceRepo serves the read-only hotel services catalog.
type ServiceRepo struct{ db *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

// ListAll returns every service ordered by id.
func (r *ServiceRepo) ListAll(ctx context.Context) ([]model.Service, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, price_cents FROM services ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Service, 0)
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns ErrServiceNotFound when no row matches.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.Service, error) {
	var s model.Service
	err := r.db.QueryRowContext(ctx, `SELECT id, name, description, price_cents FROM services WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrServiceNotFound
	}
	return s, err
}
