package services

import (
	"context"
	"database/sql"

	"contactsvc/internal/common"
	"contactsvc/internal/dbx"
	"contactsvc/internal/logging"
	"contactsvc/internal/server/models"
	"contactsvc/internal/server/repositories/contacts"
	"contactsvc/internal/server/repositories/users"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (n nopLogger) With(args ...any) logging.Logger                  { return n }

type refreshCall struct {
	userID int64
	token  string
}

type fakeUsersRepo struct {
	byEmail      map[string]*models.User
	nextID       int64
	createErr    error
	refreshErr   error
	refreshCalls []refreshCall
	confirmed    []int64
	avatars      map[int64]string
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byEmail: make(map[string]*models.User),
		nextID:  1,
		avatars: make(map[int64]string),
	}
}

func (r *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}
	u := *user
	u.ID = r.nextID
	r.nextID++
	r.byEmail[u.Email] = &u
	return &u, nil
}

func (r *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsersRepo) UpdateRefreshToken(ctx context.Context, userID int64, token string) error {
	if r.refreshErr != nil {
		return r.refreshErr
	}
	r.refreshCalls = append(r.refreshCalls, refreshCall{userID: userID, token: token})
	for _, u := range r.byEmail {
		if u.ID == userID {
			u.RefreshToken = token
		}
	}
	return nil
}

func (r *fakeUsersRepo) MarkConfirmed(ctx context.Context, userID int64) error {
	r.confirmed = append(r.confirmed, userID)
	for _, u := range r.byEmail {
		if u.ID == userID {
			u.Confirmed = true
		}
	}
	return nil
}

func (r *fakeUsersRepo) UpdateAvatar(ctx context.Context, userID int64, url string) error {
	r.avatars[userID] = url
	return nil
}

type listCall struct {
	ownerID       int64
	offset, limit int
}

type keyedCall struct {
	ownerID, id int64
}

type fakeContactsRepo struct {
	listCalls   []listCall
	getCalls    []keyedCall
	updateCalls []keyedCall
	deleteCalls []keyedCall
	lastPatch   models.ContactPatch
	created     []*models.Contact
	contact     *models.Contact
	err         error
}

func (r *fakeContactsRepo) List(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Contact, error) {
	r.listCalls = append(r.listCalls, listCall{ownerID: ownerID, offset: offset, limit: limit})
	if r.err != nil {
		return nil, r.err
	}
	return []*models.Contact{}, nil
}

func (r *fakeContactsRepo) Get(ctx context.Context, ownerID, id int64) (*models.Contact, error) {
	r.getCalls = append(r.getCalls, keyedCall{ownerID: ownerID, id: id})
	if r.err != nil {
		return nil, r.err
	}
	return r.contact, nil
}

func (r *fakeContactsRepo) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if r.err != nil {
		return nil, r.err
	}
	cp := *contact
	cp.ID = int64(len(r.created) + 1)
	r.created = append(r.created, &cp)
	return &cp, nil
}

func (r *fakeContactsRepo) Update(ctx context.Context, ownerID, id int64, patch models.ContactPatch) (*models.Contact, error) {
	r.updateCalls = append(r.updateCalls, keyedCall{ownerID: ownerID, id: id})
	r.lastPatch = patch
	if r.err != nil {
		return nil, r.err
	}
	return r.contact, nil
}

func (r *fakeContactsRepo) Delete(ctx context.Context, ownerID, id int64) error {
	r.deleteCalls = append(r.deleteCalls, keyedCall{ownerID: ownerID, id: id})
	return r.err
}

// fakeRepoManager hands out the same fakes for any DBTX, pool or transaction.
type fakeRepoManager struct {
	users    *fakeUsersRepo
	contacts *fakeContactsRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository       { return m.users }
func (m *fakeRepoManager) Contacts(db dbx.DBTX) contacts.Repository { return m.contacts }
func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

type sentMail struct {
	email, username, token string
}

type fakeMailer struct {
	sends []sentMail
	err   error
}

func (m *fakeMailer) SendVerification(ctx context.Context, email, username, token string) error {
	if m.err != nil {
		return m.err
	}
	m.sends = append(m.sends, sentMail{email: email, username: username, token: token})
	return nil
}
