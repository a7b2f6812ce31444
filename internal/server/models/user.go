package models

import "time"

// User is an identity record. Password holds the bcrypt hash, never the
// plaintext. RefreshToken holds the single currently valid refresh token;
// empty means no live session.
type User struct {
	ID           int64
	Username     string
	Email        string
	Password     string
	CreatedAt    time.Time
	Avatar       string
	RefreshToken string
	Confirmed    bool
}
