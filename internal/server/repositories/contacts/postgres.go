// Package contacts provides the PostgreSQL-backed, owner-scoped contact store.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contactsvc/internal/common"
	"contactsvc/internal/dbx"
	"contactsvc/internal/server/models"
)

// PostgresRepository implements contact storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const contactColumns = `id, user_id, first_name, last_name, email, phone_number, birthday, additional_data, created_at`

// List returns ownerID's contacts ordered by id ascending, so repeated calls
// without intervening writes page deterministically.
func (r *PostgresRepository) List(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Contact{}
	for rows.Next() {
		item, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns the contact with the given id if it belongs to ownerID. An id
// owned by someone else is indistinguishable from a missing one: both yield
// common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, ownerID, id int64) (*models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, id, ownerID)
	contact, err := scanContact(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return contact, nil
}

// Create inserts a contact bound to contact.UserID.
func (r *PostgresRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	query := `
		INSERT INTO contacts (user_id, first_name, last_name, email, phone_number, birthday, additional_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	additional := sql.NullString{String: contact.AdditionalData, Valid: contact.AdditionalData != ""}
	err := r.db.QueryRowContext(ctx, query,
		contact.UserID, contact.FirstName, contact.LastName, contact.Email,
		contact.PhoneNumber, contact.Birthday, additional).Scan(&contact.ID, &contact.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contact, nil
}

// Update applies the non-nil fields of patch to the contact keyed by
// (id, ownerID) and returns the updated row. NULL parameters fall through to
// the current column values.
func (r *PostgresRepository) Update(ctx context.Context, ownerID, id int64, patch models.ContactPatch) (*models.Contact, error) {
	query := `
		UPDATE contacts SET
			first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			email = COALESCE($5, email),
			phone_number = COALESCE($6, phone_number),
			birthday = COALESCE($7, birthday),
			additional_data = COALESCE($8, additional_data)
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns + `
	`
	row := r.db.QueryRowContext(ctx, query, id, ownerID,
		nullString(patch.FirstName), nullString(patch.LastName), nullString(patch.Email),
		nullString(patch.PhoneNumber), nullTime(patch.Birthday), nullString(patch.AdditionalData))
	contact, err := scanContact(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return contact, nil
}

// Delete removes the contact keyed by (id, ownerID); deleting a foreign or
// missing id yields common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id int64) error {
	query := `
		DELETE FROM contacts
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
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

func scanContact(scan func(dest ...any) error) (*models.Contact, error) {
	contact := &models.Contact{}
	var additional sql.NullString
	if err := scan(
		&contact.ID, &contact.UserID, &contact.FirstName, &contact.LastName,
		&contact.Email, &contact.PhoneNumber, &contact.Birthday, &additional,
		&contact.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	contact.AdditionalData = additional.String
	return contact, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
