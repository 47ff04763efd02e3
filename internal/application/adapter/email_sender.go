package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

// SendEmailResult represents the result of sending an email.
type SendEmailResult struct {
	ResendID string
}

// EmailSender defines the interface for sending emails via an external provider.
type EmailSender interface {
	// Send delivers one rendered email.
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}

// QueueBudgetAlertInput describes a budget that crossed an alert threshold.
type QueueBudgetAlertInput struct {
	UserEmail  string
	UserName   string
	BudgetID   uuid.UUID
	Category   entity.Category
	Level      entity.BudgetStatusLevel
	Amount     decimal.Decimal
	Spent      decimal.Decimal
	Percentage int64
	EndDate    time.Time
}

// QueueWelcomeInput describes a freshly registered user.
type QueueWelcomeInput struct {
	UserEmail string
	UserName  string
}

// EmailService defines the interface for queueing emails.
type EmailService interface {
	// QueueBudgetAlertEmail queues a budget alert email.
	QueueBudgetAlertEmail(ctx context.Context, input QueueBudgetAlertInput) error

	// QueueWelcomeEmail queues a welcome email.
	QueueWelcomeEmail(ctx context.Context, input QueueWelcomeInput) error
}

// AlertTracker remembers which alerts were already sent.
type AlertTracker interface {
	// Claim records key and reports true only the first time it is seen within ttl.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
