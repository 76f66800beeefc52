package domain

import "time"

// Agent is a support staff member who answers tickets.
type Agent struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
