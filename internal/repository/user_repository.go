package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
	"github.com/iliyamo/cinema-ticket-sales/internal/utils"
)

// UserRepo provides access to the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts a new non-admin user,
// returning its ID.  A taken username surfaces as ErrUsernameExists, a
// taken email as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username, email, hashed_password, is_admin) VALUES (?, ?, ?, 0)`,
		username, email, hash)
	if err != nil {
		if isDuplicate(err) {
			// The violated key names the column: uq_users_email in the
			// MySQL schema, users.email in the SQLite test schema.
			msg := err.Error()
			if strings.Contains(msg, "uq_users_email") || strings.Contains(msg, "users.email") {
				return 0, ErrEmailExists
			}
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername loads a user by exact username.  Returns
// ErrUserNotFound when no row matches.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT id, username, email, hashed_password, is_admin FROM users WHERE username = ?`
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, username, email, hashed_password, is_admin FROM users WHERE id = ?`
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate verifies username/password and returns the user on
// success.  Both unknown usernames and wrong passwords yield
// ErrUserNotFound so callers cannot distinguish the two cases.
func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.HashedPassword, password) {
		return nil, ErrUserNotFound
	}
	return u, nil
}
