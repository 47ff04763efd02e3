package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
)

// minAlertTTL keeps alert claims alive for at least this long.
const minAlertTTL = time.Hour

// BudgetAlertNotifier queues one email per budget and level the first time the level is reached.
type BudgetAlertNotifier struct {
	userRepo     adapter.UserRepository
	emailService adapter.EmailService
	tracker      adapter.AlertTracker
	clock        adapter.Clock
}

// NewBudgetAlertNotifier creates a new BudgetAlertNotifier instance.
func NewBudgetAlertNotifier(userRepo adapter.UserRepository, emailService adapter.EmailService, tracker adapter.AlertTracker, clock adapter.Clock) *BudgetAlertNotifier {
	return &BudgetAlertNotifier{
		userRepo:     userRepo,
		emailService: emailService,
		tracker:      tracker,
		clock:        clock,
	}
}

// AlertKey is the de-duplication key of one budget alert level.
func AlertKey(budgetID uuid.UUID, level entity.BudgetStatusLevel) string {
	return fmt.Sprintf("budget-alert:%s:%s", budgetID, level)
}

// Notify queues alerts for budgets at warning, critical or exceeded.
func (n *BudgetAlertNotifier) Notify(ctx context.Context, userID uuid.UUID, budgets []entity.BudgetWithStatus) error {
	var alerting []entity.BudgetWithStatus
	for _, b := range budgets {
		if b.Status.Level.IsAlert() {
			alerting = append(alerting, b)
		}
	}
	if len(alerting) == 0 {
		return nil
	}

	user, err := n.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !user.BudgetAlerts {
		return nil
	}

	var errs []error
	for _, b := range alerting {
		claimed, err := n.tracker.Claim(ctx, AlertKey(b.Budget.ID, b.Status.Level), n.ttl(b.Budget))
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to claim alert for budget %s: %w", b.Budget.ID, err))
			continue
		}
		if !claimed {
			continue
		}

		err = n.emailService.QueueBudgetAlertEmail(ctx, adapter.QueueBudgetAlertInput{
			UserEmail:  user.Email,
			UserName:   user.Name,
			BudgetID:   b.Budget.ID,
			Category:   b.Budget.Category,
			Level:      b.Status.Level,
			Amount:     b.Budget.Amount,
			Spent:      b.Status.Spent,
			Percentage: b.Status.Percentage,
			EndDate:    b.Budget.EndDate,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to queue alert for budget %s: %w", b.Budget.ID, err))
		}
	}

	return errors.Join(errs...)
}

// ttl keeps the claim until the day after the budget window closes.
func (n *BudgetAlertNotifier) ttl(b *entity.Budget) time.Duration {
	ttl := b.EndDate.Add(24 * time.Hour).Sub(n.clock.Now())
	if ttl < minAlertTTL {
		return minAlertTTL
	}
	return ttl
}
