package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userSelect = `SELECT u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.phone,
                           u.is_active, u.role_id, COALESCE(ro.name, ''), u.created_at, u.updated_at
                    FROM users u
                    LEFT JOIN roles ro ON ro.id = u.role_id`

func scanUser(s rowScanner) (model.User, error) {
	var (
		u      model.User
		roleID sql.NullInt64
	)
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.IsActive, &roleID, &u.RoleName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, ErrUserNotFound
		}
		return u, err
	}
	if roleID.Valid {
		id := uint64(roleID.Int64)
		u.RoleID = &id
	}
	return u, nil
}

// CreateTx hashes password and inserts u inside tx, setting u.ID.  A taken
// username yields ErrUsernameExists.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.User, password string, cost int) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, phone, is_active, role_id)
         VALUES (?,?,?,?,?,?,?,?)`,
		u.Username, u.Email, hash, u.FirstName, u.LastName, u.Phone, true, u.RoleID)
	if err != nil {
		if isDuplicate(err) {
			return ErrUsernameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.PasswordHash = hash
	u.IsActive = true
	return nil
}

// GetByUsername fetches a user with its role name.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, userSelect+` WHERE u.username = ? LIMIT 1`, strings.TrimSpace(username)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, userSelect+` WHERE u.id = ? LIMIT 1`, id))
}

// ProfileChanges lists the mutable profile columns; nil fields are left
// untouched.
type ProfileChanges struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
}

// UpdateProfile applies the non-nil fields of ch.  The username is never
// written.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, ch ProfileChanges) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if ch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(*ch.Email)))
	}
	if ch.FirstName != nil {
		sets = append(sets, "first_name = ?")
		args = append(args, *ch.FirstName)
	}
	if ch.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, *ch.LastName)
	}
	if ch.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *ch.Phone)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = UTC_TIMESTAMP()")
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	return err
}
