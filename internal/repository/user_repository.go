package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/utils"
)

// UserRepo persists users. It is the credential store the token service
// and auth handlers resolve identities against.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,name,email,password_hash,role,is_active,created_at,updated_at"

// Create inserts a user and returns its ID. The password is hashed with
// bcrypt at the given cost before it ever touches the database.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, hash, role)
	if err != nil {
		// MySQL duplicate-key; the error text names the violated index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			if strings.Contains(err.Error(), "email") {
				return 0, ErrEmailExists
			}
			return 0, ErrNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByLogin fetches a user by email or display name, whichever matches.
// Login forms accept either.
func (r *UserRepo) GetByLogin(ctx context.Context, usernameOrEmail string) (model.User, error) {
	v := strings.TrimSpace(usernameOrEmail)
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? OR name=? LIMIT 1",
		strings.ToLower(v), v))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}
