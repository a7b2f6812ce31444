// Package users provides the PostgreSQL-backed user directory.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"contactsvc/internal/common"
	"contactsvc/internal/dbx"
	"contactsvc/internal/server/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// PostgresRepository implements user storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user row. A unique-constraint violation on email maps
// to common.ErrDuplicateEmail; the insert is a single statement so a conflict
// leaves no partial row behind.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	avatar := sql.NullString{String: user.Avatar, Valid: user.Avatar != ""}
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Password, avatar).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// FindByEmail returns the user row for the given email or common.ErrorNotFound.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password, created_at, avatar, refresh_token, confirmed
		FROM users
		WHERE email = $1
	`
	user := &models.User{}
	var avatar, refreshToken sql.NullString
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password,
		&user.CreatedAt, &avatar, &refreshToken, &user.Confirmed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.Avatar = avatar.String
	user.RefreshToken = refreshToken.String
	return user, nil
}

// UpdateRefreshToken overwrites the stored refresh token for userID.
// An empty token stores NULL.
func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, userID int64, token string) error {
	query := `
		UPDATE users SET refresh_token = $2
		WHERE id = $1
	`
	value := sql.NullString{String: token, Valid: token != ""}
	return r.execOne(ctx, query, userID, value)
}

// MarkConfirmed flips the confirmed flag for userID. Confirming an already
// confirmed user is a plain overwrite with the same value.
func (r *PostgresRepository) MarkConfirmed(ctx context.Context, userID int64) error {
	query := `
		UPDATE users SET confirmed = true
		WHERE id = $1
	`
	return r.execOne(ctx, query, userID)
}

// UpdateAvatar stores a new avatar URL for userID.
func (r *PostgresRepository) UpdateAvatar(ctx context.Context, userID int64, url string) error {
	query := `
		UPDATE users SET avatar = $2
		WHERE id = $1
	`
	return r.execOne(ctx, query, userID, url)
}

// execOne runs an UPDATE expected to touch exactly one row and maps zero
// affected rows to common.ErrorNotFound.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
