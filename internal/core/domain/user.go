package domain

import "time"

// User represents a registered account. Email is the unique identity.
// PasswordHash is a bcrypt hash; the plaintext password is never kept.
type User struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
