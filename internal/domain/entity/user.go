package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account owning expenses and budgets.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	BudgetAlerts bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a new User with budget alerts enabled.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		BudgetAlerts: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
