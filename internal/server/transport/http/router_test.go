package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactsvc/internal/common"
	"contactsvc/internal/logging"
	"contactsvc/internal/server/models"
	"contactsvc/internal/server/services"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (n nopLogger) With(args ...any) logging.Logger                  { return n }

type fakeAuth struct {
	signupUser *models.User
	signupErr  error
	pair       *services.TokenPair
	pairErr    error

	resolved   *models.User
	resolveErr error

	refreshed []string
	confirmed []string
	requested []string
	loggedOut []int64
}

func (f *fakeAuth) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return f.signupUser, nil
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	if f.pairErr != nil {
		return nil, f.pairErr
	}
	return f.pair, nil
}

func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	f.refreshed = append(f.refreshed, refreshToken)
	if f.pairErr != nil {
		return nil, f.pairErr
	}
	return f.pair, nil
}

func (f *fakeAuth) ResolveIdentity(ctx context.Context, accessToken string) (*models.User, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	if f.resolved == nil {
		return nil, common.ErrUnauthenticated
	}
	return f.resolved, nil
}

func (f *fakeAuth) ConfirmEmail(ctx context.Context, token string) error {
	f.confirmed = append(f.confirmed, token)
	return nil
}

func (f *fakeAuth) RequestVerification(ctx context.Context, email string) error {
	f.requested = append(f.requested, email)
	return nil
}

func (f *fakeAuth) Logout(ctx context.Context, user *models.User) error {
	f.loggedOut = append(f.loggedOut, user.ID)
	return nil
}

type fakeContacts struct {
	owners  []int64
	list    []*models.Contact
	contact *models.Contact
	err     error

	lastOffset, lastLimit int
	lastID                int64
	lastPatch             models.ContactPatch
	created               *models.Contact
}

func (f *fakeContacts) List(ctx context.Context, owner *models.User, offset, limit int) ([]*models.Contact, error) {
	f.owners = append(f.owners, owner.ID)
	f.lastOffset, f.lastLimit = offset, limit
	if f.err != nil {
		return nil, f.err
	}
	if f.list == nil {
		return []*models.Contact{}, nil
	}
	return f.list, nil
}

func (f *fakeContacts) Get(ctx context.Context, owner *models.User, id int64) (*models.Contact, error) {
	f.owners = append(f.owners, owner.ID)
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.contact, nil
}

func (f *fakeContacts) Create(ctx context.Context, owner *models.User, contact *models.Contact) (*models.Contact, error) {
	f.owners = append(f.owners, owner.ID)
	if f.err != nil {
		return nil, f.err
	}
	cp := *contact
	cp.ID = 1
	cp.UserID = owner.ID
	f.created = &cp
	return &cp, nil
}

func (f *fakeContacts) Update(ctx context.Context, owner *models.User, id int64, patch models.ContactPatch) (*models.Contact, error) {
	f.owners = append(f.owners, owner.ID)
	f.lastID = id
	f.lastPatch = patch
	if f.err != nil {
		return nil, f.err
	}
	return f.contact, nil
}

func (f *fakeContacts) Delete(ctx context.Context, owner *models.User, id int64) error {
	f.owners = append(f.owners, owner.ID)
	f.lastID = id
	return f.err
}

type fakeUsers struct {
	key, url string
	avatar   string
	err      error
	setKeys  []string
}

func (f *fakeUsers) AvatarUploadURL(ctx context.Context) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return f.key, f.url, nil
}

func (f *fakeUsers) SetAvatar(ctx context.Context, user *models.User, key string) (string, error) {
	f.setKeys = append(f.setKeys, key)
	if f.err != nil {
		return "", f.err
	}
	return f.avatar, nil
}

func newTestRouter(auth *fakeAuth, contacts *fakeContacts, users *fakeUsers) http.Handler {
	return NewRouter(RouterConfig{
		Auth:        NewAuthHandler(auth),
		Contacts:    NewContactHandler(contacts),
		Users:       NewUserHandler(users),
		RequireAuth: NewAuthenticator(auth).Handler,
		Logger:      nopLogger{},
	})
}

func doJSON(t *testing.T, h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSignupEndpoint(t *testing.T) {
	auth := &fakeAuth{signupUser: &models.User{ID: 1, Username: "jane", Email: "jane@example.com", Avatar: "https://gravatar/x"}}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"username":"jane","email":"jane@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp signupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.User.ID)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Detail)
}

func TestSignupEndpoint_DuplicateEmail(t *testing.T) {
	auth := &fakeAuth{signupErr: common.ErrDuplicateEmail}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"username":"jane","email":"jane@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupEndpoint_BadBody(t *testing.T) {
	h := newTestRouter(&fakeAuth{}, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/auth/signup", "", `{"username":"jane"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	auth := &fakeAuth{pair: &services.TokenPair{AccessToken: "acc", RefreshToken: "ref"}}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "",
		`{"email":"jane@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "acc", resp.AccessToken)
	assert.Equal(t, "ref", resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	auth := &fakeAuth{pairErr: common.ErrInvalidCredentials}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "",
		`{"email":"jane@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	auth := &fakeAuth{pair: &services.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"}}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodGet, "/api/auth/refresh_token", "old-refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"old-refresh"}, auth.refreshed)
}

func TestRefreshEndpoint_MissingHeader(t *testing.T) {
	h := newTestRouter(&fakeAuth{}, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodGet, "/api/auth/refresh_token", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpoint_Replay(t *testing.T) {
	auth := &fakeAuth{pairErr: common.ErrorUnauthorized}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodGet, "/api/auth/refresh_token", "stale", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmEmailEndpoint(t *testing.T) {
	auth := &fakeAuth{}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodGet, "/api/auth/confirmed_email/tok-123", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"tok-123"}, auth.confirmed)
}

func TestRequestEmailEndpoint(t *testing.T) {
	auth := &fakeAuth{}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPost, "/api/auth/request_email", "",
		`{"email":"jane@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"jane@example.com"}, auth.requested)
}

func TestLogoutEndpoint(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7, Email: "jane@example.com"}}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPost, "/api/auth/logout", "acc", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{7}, auth.loggedOut)
}

func TestLogoutEndpoint_Unauthenticated(t *testing.T) {
	h := newTestRouter(&fakeAuth{}, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPost, "/api/auth/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContactsEndpoints_RequireAuth(t *testing.T) {
	h := newTestRouter(&fakeAuth{}, &fakeContacts{}, &fakeUsers{})

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/api/contacts/"},
		{http.MethodPost, "/api/contacts/"},
		{http.MethodGet, "/api/contacts/1"},
		{http.MethodPatch, "/api/contacts/1"},
		{http.MethodDelete, "/api/contacts/1"},
	} {
		rec := doJSON(t, h, tc.method, tc.target, "", "")
		assert.Equalf(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.target)
	}
}

func TestContactsList(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	contacts := &fakeContacts{}
	h := newTestRouter(auth, contacts, &fakeUsers{})

	rec := doJSON(t, h, http.MethodGet, "/api/contacts/?offset=5&limit=10", "acc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Equal(t, []int64{7}, contacts.owners)
	assert.Equal(t, 5, contacts.lastOffset)
	assert.Equal(t, 10, contacts.lastLimit)
}

func TestContactsList_BadPagination(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodGet, "/api/contacts/?offset=x", "acc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactsCreate(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	contacts := &fakeContacts{}
	h := newTestRouter(auth, contacts, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPost, "/api/contacts/", "acc",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","birthday":"1815-12-10"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, contacts.created)
	assert.Equal(t, int64(7), contacts.created.UserID)
	assert.Equal(t, "Ada", contacts.created.FirstName)
	assert.Equal(t, 1815, contacts.created.Birthday.Year())

	var resp contactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1815-12-10", resp.Birthday)
}

func TestContactsCreate_BadBirthday(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPost, "/api/contacts/", "acc",
		`{"first_name":"Ada","last_name":"Lovelace","birthday":"10/12/1815"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactsGet_NotFound(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	contacts := &fakeContacts{err: common.ErrorNotFound}
	h := newTestRouter(auth, contacts, &fakeUsers{})

	rec := doJSON(t, h, http.MethodGet, "/api/contacts/42", "acc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int64(42), contacts.lastID)
}

func TestContactsGet_BadID(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodGet, "/api/contacts/abc", "acc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactsUpdate_PartialPatch(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	contacts := &fakeContacts{contact: &models.Contact{ID: 3, FirstName: "Ada"}}
	h := newTestRouter(auth, contacts, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPatch, "/api/contacts/3", "acc", `{"phone_number":"+4400"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, contacts.lastPatch.PhoneNumber)
	assert.Equal(t, "+4400", *contacts.lastPatch.PhoneNumber)
	assert.Nil(t, contacts.lastPatch.FirstName)
	assert.Nil(t, contacts.lastPatch.Birthday)
}

func TestContactsDelete(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	contacts := &fakeContacts{}
	h := newTestRouter(auth, contacts, &fakeUsers{})

	rec := doJSON(t, h, http.MethodDelete, "/api/contacts/3", "acc", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(3), contacts.lastID)
}

func TestUsersMe(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7, Username: "jane", Email: "jane@example.com"}}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodGet, "/api/users/me", "acc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "jane", resp.Username)
}

func TestUsersAvatarUpload(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	users := &fakeUsers{key: "avatars/2026/8/28/k", url: "https://s3/put"}
	h := newTestRouter(auth, &fakeContacts{}, users)

	rec := doJSON(t, h, http.MethodGet, "/api/users/avatar_upload", "acc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp avatarUploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "avatars/2026/8/28/k", resp.Key)
	assert.Equal(t, "https://s3/put", resp.UploadURL)
}

func TestUsersSetAvatar(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	users := &fakeUsers{avatar: "https://cdn/avatars/k"}
	h := newTestRouter(auth, &fakeContacts{}, users)

	rec := doJSON(t, h, http.MethodPatch, "/api/users/avatar", "acc", `{"key":"avatars/k"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"avatars/k"}, users.setKeys)
	assert.Contains(t, rec.Body.String(), "https://cdn/avatars/k")
}

func TestUsersSetAvatar_MissingKey(t *testing.T) {
	auth := &fakeAuth{resolved: &models.User{ID: 7}}
	h := newTestRouter(auth, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodPatch, "/api/users/avatar", "acc", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(&fakeAuth{}, &fakeContacts{}, &fakeUsers{})

	rec := doJSON(t, h, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
