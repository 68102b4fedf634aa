package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a directory record. Password and OAuth columns exist for the auth
// collaborator; the history engine only reads id, name, and email.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GoogleID     string    `json:"-"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
