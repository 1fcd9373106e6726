package model

import "time"

// NoRole is the role claim value for users without an assigned role.
const NoRole = "No Role"

// User represents an application user record as stored in the
// `users` table.  RoleID is nil when no role has been assigned; RoleName is
// populated by queries that join `roles`.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username (immutable)
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Phone        string    // users.phone
	IsActive     bool      // users.is_active
	RoleID       *uint64   // users.role_id (nullable)
	RoleName     string    // roles.name via join, empty when RoleID is nil
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RoleClaim returns the role name placed in tokens.
func (u User) RoleClaim() string {
	if u.RoleID == nil || u.RoleName == "" {
		return NoRole
	}
	return u.RoleName
}

// Role is a row in the `roles` table.
type Role struct {
	ID   uint64 // roles.id
	Name string // roles.name
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the issued token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
