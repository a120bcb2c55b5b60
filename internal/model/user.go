package model

import "time"

// Role names as stored in users.role and embedded in access-token claims.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User represents an application user record as stored in the `users`
// table. Administrators list products and pull reports; customers buy.
// Handlers define their own response types with JSON tags, so none are
// declared here.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – unique display name, usable as a login alongside email.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or CUSTOMER.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models the `refresh_tokens` table. There is exactly one
// row per user (user_id is the key); re-issuing a token overwrites the
// row in place, which invalidates the previous value. Only the SHA-256
// hash of the token value is stored.
//
// Fields:
//  UserID    – owner of the token; unique per user.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  UpdatedAt – when the row was last rotated.
type RefreshToken struct {
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash
	ExpiresAt time.Time // refresh_tokens.expires_at
	UpdatedAt time.Time // refresh_tokens.updated_at
}
