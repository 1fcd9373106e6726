// Package repository implements the MySQL store behind the booking API.
// Sentinel errors defined here let the service layer distinguish missing
// rows and constraint violations without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomTypeNotFound    = errors.New("room type not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationCodeUsed = errors.New("reservation code already in use")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrUsernameExists      = errors.New("username already exists")
	ErrInvalidRefresh      = errors.New("refresh token invalid, expired or revoked")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
