package contacts

import (
	"context"

	"contactsvc/internal/server/models"
)

// Repository is the owner-scoped contact store. Every read, update and
// delete is keyed by both the record id and the owning user; there is no
// code path that queries by id alone.
type Repository interface {
	List(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Contact, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	Update(ctx context.Context, ownerID, id int64, patch models.ContactPatch) (*models.Contact, error)
	Delete(ctx context.Context, ownerID, id int64) error
}
