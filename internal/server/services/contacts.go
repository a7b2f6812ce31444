package services

import (
	"context"
	"database/sql"

	"contactsvc/internal/server/models"
	"contactsvc/internal/server/repositories/repomanager"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// ContactService exposes owner-scoped contact operations. Every call takes
// the resolved identity as an explicit parameter; the owner filter is never
// optional and never implicit.
type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewContactService constructs a ContactService.
func NewContactService(db *sql.DB, m repomanager.RepositoryManager) *ContactService {
	return &ContactService{db: db, repomanager: m}
}

// List returns owner's contacts, paginated with a stable id ordering.
// Out-of-range offset/limit values are clamped.
func (s *ContactService) List(ctx context.Context, owner *models.User, offset, limit int) ([]*models.Contact, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repomanager.Contacts(s.db).List(ctx, owner.ID, offset, limit)
}

// Get returns owner's contact with the given id, or common.ErrorNotFound —
// also when the id exists but belongs to someone else.
func (s *ContactService) Get(ctx context.Context, owner *models.User, id int64) (*models.Contact, error) {
	return s.repomanager.Contacts(s.db).Get(ctx, owner.ID, id)
}

// Create stores a new contact bound to owner. The binding is permanent.
func (s *ContactService) Create(ctx context.Context, owner *models.User, contact *models.Contact) (*models.Contact, error) {
	contact.UserID = owner.ID
	return s.repomanager.Contacts(s.db).Create(ctx, contact)
}

// Update applies the non-nil fields of patch to owner's contact.
func (s *ContactService) Update(ctx context.Context, owner *models.User, id int64, patch models.ContactPatch) (*models.Contact, error) {
	return s.repomanager.Contacts(s.db).Update(ctx, owner.ID, id, patch)
}

// Delete removes owner's contact with the given id.
func (s *ContactService) Delete(ctx context.Context, owner *models.User, id int64) error {
	return s.repomanager.Contacts(s.db).Delete(ctx, owner.ID, id)
}
