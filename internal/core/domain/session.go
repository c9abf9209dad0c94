package domain

import "time"

// Session is the verified content of a session token.
type Session struct {
	TokenID   string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt *time.Time // nil when tokens are issued without expiry
}
