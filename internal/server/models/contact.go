package models

import "time"

// Contact is an owner-scoped record. UserID is bound at creation time and
// never reassigned.
type Contact struct {
	ID             int64
	UserID         int64
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	Birthday       time.Time
	AdditionalData string
	CreatedAt      time.Time
}

// ContactPatch carries a partial update: nil fields are left unchanged.
type ContactPatch struct {
	FirstName      *string
	LastName       *string
	Email          *string
	PhoneNumber    *string
	Birthday       *time.Time
	AdditionalData *string
}
