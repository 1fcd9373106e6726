package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoleRepo resolves permission tiers by name.
type RoleRepo struct{ db *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{db: db} }

// GetByNameTx returns ErrRoleNotFound when no role carries name.
func (r *RoleRepo) GetByNameTx(ctx context.Context, tx *sql.Tx, name string) (model.Role, error) {
	var role model.Role
	err := tx.QueryRowContext(ctx, `SELECT id, name FROM roles WHERE name = ? LIMIT 1`, name).Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return role, ErrRoleNotFound
	}
	return role, err
}

// CreateTx inserts a role.  When a concurrent registration created it first
// the existing row is returned.
func (r *RoleRepo) CreateTx(ctx context.Context, tx *sql.Tx, name string) (model.Role, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO roles (name) VALUES (?)`, name)
	if err != nil {
		if isDuplicate(err) {
			return r.GetByNameTx(ctx, tx, name)
		}
		return model.Role{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Role{}, err
	}
	return model.Role{ID: uint64(id), Name: name}, nil
}
