package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/amadou/nexus-connect/internal/apperror"
	"github.com/amadou/nexus-connect/internal/model"
	"github.com/amadou/nexus-connect/internal/repository"
)

// UserDB implements repository.UserRepository.
type UserDB struct {
	db *DB
}

// compile-time check
var _ repository.UserRepository = (*UserDB)(nil)

const userColumns = `id, email, password_hash, first_name, last_name, google_id, has_profile, created_at`

// Create inserts a new user. The ID and CreatedAt are generated here.
// A duplicate email (case-insensitive) surfaces as apperror.ErrConflict;
// the UNIQUE constraint fires even when two registrations race past the
// service-level existence check.
func (r *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.GoogleID,
		user.HasProfile,
		encodeTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email already registered")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (r *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by email. The lookup is case-insensitive
// because the column collates NOCASE.
func (r *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserDB) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	var (
		u         model.User
		createdAt string
	)

	err := r.db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.GoogleID,
		&u.HasProfile,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", arg, err)
	}

	if u.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}

	return &u, nil
}

// SetGoogleID attaches a federated subject id to an existing account.
func (r *UserDB) SetGoogleID(ctx context.Context, id, googleID string) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE users SET google_id = ? WHERE id = ?`, googleID, id)
	if err != nil {
		return fmt.Errorf("sqlite: setting google_id for user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// SetHasProfile flips the hasProfile flag.
func (r *UserDB) SetHasProfile(ctx context.Context, id string, has bool) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE users SET has_profile = ? WHERE id = ?`, has, id)
	if err != nil {
		return fmt.Errorf("sqlite: setting has_profile for user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// Count returns the number of registered users.
func (r *UserDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

// UserExists reports whether a user with the given ID is stored. Used by
// the auth middleware so tokens for deleted subjects are rejected.
func (r *UserDB) UserExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user %s: %w", id, err)
	}
	return n > 0, nil
}
