package repomanager

import (
	"context"
	"database/sql"

	"contactsvc/internal/dbx"
	"contactsvc/internal/server/repositories/contacts"
	"contactsvc/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can run
// the same repository code against the pool or inside a transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
