package http

import (
	"context"
	"net/http"

	"contactsvc/internal/common"
	"contactsvc/internal/server/models"
)

// UserService is the slice of the profile service the user handlers use.
type UserService interface {
	AvatarUploadURL(ctx context.Context) (string, string, error)
	SetAvatar(ctx context.Context, user *models.User, key string) (string, error)
}

type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, common.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type avatarUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

// AvatarUpload returns a presigned PUT URL the client uploads the avatar
// image to, plus the object key to pass back via SetAvatar.
func (h *UserHandler) AvatarUpload(w http.ResponseWriter, r *http.Request) {
	key, url, err := h.users.AvatarUploadURL(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, avatarUploadResponse{Key: key, UploadURL: url})
}

type setAvatarRequest struct {
	Key string `json:"key"`
}

func (h *UserHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, common.ErrUnauthenticated)
		return
	}

	var req setAvatarRequest
	if err := decodeJSON(r, &req); err != nil || req.Key == "" {
		writeBadRequest(w, "key is required")
		return
	}

	url, err := h.users.SetAvatar(r.Context(), user, req.Key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"avatar": url})
}
