package domain

import "time"

// UserCreatedEvent is published after a new account is persisted.
type UserCreatedEvent struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// RateUpdatedEvent is published after a rate source refreshed successfully.
type RateUpdatedEvent struct {
	Source    RateSourceID `json:"source"`
	Value     float64      `json:"value"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
