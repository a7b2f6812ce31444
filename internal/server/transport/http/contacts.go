package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"contactsvc/internal/common"
	"contactsvc/internal/server/models"
)

const birthdayLayout = "2006-01-02"

// ContactService is the slice of the contact service the handlers use. Every
// method takes the authenticated owner explicitly.
type ContactService interface {
	List(ctx context.Context, owner *models.User, offset, limit int) ([]*models.Contact, error)
	Get(ctx context.Context, owner *models.User, id int64) (*models.Contact, error)
	Create(ctx context.Context, owner *models.User, contact *models.Contact) (*models.Contact, error)
	Update(ctx context.Context, owner *models.User, id int64, patch models.ContactPatch) (*models.Contact, error)
	Delete(ctx context.Context, owner *models.User, id int64) error
}

type ContactHandler struct {
	contacts ContactService
}

func NewContactHandler(contacts ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Birthday       string `json:"birthday"`
	AdditionalData string `json:"additional_data"`
}

type contactResponse struct {
	ID             int64  `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Birthday       string `json:"birthday"`
	AdditionalData string `json:"additional_data,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func toContactResponse(c *models.Contact) contactResponse {
	resp := contactResponse{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		PhoneNumber:    c.PhoneNumber,
		AdditionalData: c.AdditionalData,
	}
	if !c.Birthday.IsZero() {
		resp.Birthday = c.Birthday.Format(birthdayLayout)
	}
	if !c.CreatedAt.IsZero() {
		resp.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := UserFromContext(r.Context())
	if owner == nil {
		writeError(w, common.ErrUnauthenticated)
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeBadRequest(w, "offset must be an integer")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeBadRequest(w, "limit must be an integer")
		return
	}

	list, err := h.contacts.List(r.Context(), owner, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]contactResponse, 0, len(list))
	for _, c := range list {
		resp = append(resp, toContactResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner := UserFromContext(r.Context())
	if owner == nil {
		writeError(w, common.ErrUnauthenticated)
		return
	}

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Birthday == "" {
		writeBadRequest(w, "first_name, last_name and birthday are required")
		return
	}
	bd, err := time.Parse(birthdayLayout, req.Birthday)
	if err != nil {
		writeBadRequest(w, "birthday must be YYYY-MM-DD")
		return
	}

	contact := &models.Contact{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       bd,
		AdditionalData: req.AdditionalData,
	}

	created, err := h.contacts.Create(r.Context(), owner, contact)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContactResponse(created))
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := UserFromContext(r.Context())
	if owner == nil {
		writeError(w, common.ErrUnauthenticated)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "id must be an integer")
		return
	}

	contact, err := h.contacts.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

type contactPatchRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	PhoneNumber    *string `json:"phone_number"`
	Birthday       *string `json:"birthday"`
	AdditionalData *string `json:"additional_data"`
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner := UserFromContext(r.Context())
	if owner == nil {
		writeError(w, common.ErrUnauthenticated)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "id must be an integer")
		return
	}

	var req contactPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	patch := models.ContactPatch{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		AdditionalData: req.AdditionalData,
	}
	if req.Birthday != nil {
		bd, err := time.Parse(birthdayLayout, *req.Birthday)
		if err != nil {
			writeBadRequest(w, "birthday must be YYYY-MM-DD")
			return
		}
		patch.Birthday = &bd
	}

	updated, err := h.contacts.Update(r.Context(), owner, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(updated))
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := UserFromContext(r.Context())
	if owner == nil {
		writeError(w, common.ErrUnauthenticated)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "id must be an integer")
		return
	}

	if err := h.contacts.Delete(r.Context(), owner, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
