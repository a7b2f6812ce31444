package users

import (
	"context"

	"contactsvc/internal/server/models"
)

// Repository is the user directory: persistence-backed lookup and mutation
// of identity records.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateRefreshToken overwrites the single stored refresh token;
	// an empty token clears it and invalidates the live session.
	UpdateRefreshToken(ctx context.Context, userID int64, token string) error
	MarkConfirmed(ctx context.Context, userID int64) error
	UpdateAvatar(ctx context.Context, userID int64, url string) error
}
