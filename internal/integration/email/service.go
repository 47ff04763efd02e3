// Package email provides email sending functionality.
package email

import (
	"context"
	"fmt"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// Service handles email queueing operations.
type Service struct {
	queue      adapter.EmailQueueRepository
	appBaseURL string
}

// NewService creates a new email service.
func NewService(queue adapter.EmailQueueRepository, appBaseURL string) *Service {
	return &Service{
		queue:      queue,
		appBaseURL: appBaseURL,
	}
}

// QueueBudgetAlertEmail queues a budget alert email.
func (s *Service) QueueBudgetAlertEmail(ctx context.Context, input adapter.QueueBudgetAlertInput) error {
	subject := fmt.Sprintf("Your %s budget is at %d%% - Expense Tracker", input.Category, input.Percentage)
	if input.Level == entity.BudgetStatusExceeded {
		subject = fmt.Sprintf("Your %s budget has been exceeded - Expense Tracker", input.Category)
	}

	templateData := map[string]interface{}{
		"user_name":     input.UserName,
		"category":      string(input.Category),
		"level":         string(input.Level),
		"amount":        input.Amount.StringFixed(2),
		"spent":         input.Spent.StringFixed(2),
		"percentage":    fmt.Sprintf("%d", input.Percentage),
		"end_date":      input.EndDate.Format(entity.DateLayout),
		"dashboard_url": s.appBaseURL + "/budgets/" + input.BudgetID.String(),
	}

	return s.enqueue(ctx, entity.NewEmailJob(
		entity.TemplateBudgetAlert,
		input.UserEmail,
		input.UserName,
		subject,
		templateData,
	), "failed to queue budget alert email")
}

// QueueWelcomeEmail queues a welcome email.
func (s *Service) QueueWelcomeEmail(ctx context.Context, input adapter.QueueWelcomeInput) error {
	templateData := map[string]interface{}{
		"user_name": input.UserName,
		"app_url":   s.appBaseURL,
	}

	return s.enqueue(ctx, entity.NewEmailJob(
		entity.TemplateWelcome,
		input.UserEmail,
		input.UserName,
		"Welcome to Expense Tracker",
		templateData,
	), "failed to queue welcome email")
}

func (s *Service) enqueue(ctx context.Context, job *entity.EmailJob, message string) error {
	if err := s.queue.Create(ctx, job); err != nil {
		return domainerror.NewEmailError(domainerror.ErrCodeEmailQueueFailed, message, err)
	}
	return nil
}

// Ensure Service implements adapter.EmailService.
var _ adapter.EmailService = (*Service)(nil)
