package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
)

// DefaultStatusConcurrency bounds the per-budget spending queries run in parallel.
const DefaultStatusConcurrency = 8

// AlertNotifier is told about every freshly computed budget status.
type AlertNotifier interface {
	Notify(ctx context.Context, userID uuid.UUID, budgets []entity.BudgetWithStatus) error
}

// ListBudgetsInput represents the input for listing budgets.
type ListBudgetsInput struct {
	UserID uuid.UUID
}

// ListBudgetsOutput represents the output of listing budgets.
type ListBudgetsOutput struct {
	Budgets []entity.BudgetWithStatus
}

// ListBudgetsUseCase lists the user's budgets, each merged with its current status.
type ListBudgetsUseCase struct {
	budgetRepo  adapter.BudgetRepository
	spending    adapter.SpendingCalculator
	notifier    AlertNotifier
	concurrency int
}

// NewListBudgetsUseCase creates a new ListBudgetsUseCase instance. notifier may be nil.
func NewListBudgetsUseCase(budgetRepo adapter.BudgetRepository, spending adapter.SpendingCalculator, notifier AlertNotifier, concurrency int) *ListBudgetsUseCase {
	if concurrency <= 0 {
		concurrency = DefaultStatusConcurrency
	}
	return &ListBudgetsUseCase{
		budgetRepo:  budgetRepo,
		spending:    spending,
		notifier:    notifier,
		concurrency: concurrency,
	}
}

// Execute performs the listing. One spending query runs per budget.
func (uc *ListBudgetsUseCase) Execute(ctx context.Context, input ListBudgetsInput) (*ListBudgetsOutput, error) {
	budgets, err := uc.budgetRepo.FindByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	results := make([]entity.BudgetWithStatus, len(budgets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for i, b := range budgets {
		g.Go(func() error {
			spent, err := uc.spending.SumSpending(gctx, b.UserID, b.Category, b.StartDate, b.EndDate)
			if err != nil {
				return fmt.Errorf("failed to compute spending for budget %s: %w", b.ID, err)
			}
			results[i] = entity.BudgetWithStatus{
				Budget: b,
				Status: ComputeStatus(b, spent),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if uc.notifier != nil {
		if err := uc.notifier.Notify(ctx, input.UserID, results); err != nil {
			slog.Warn("Failed to notify budget alerts", "user_id", input.UserID, "error", err)
		}
	}

	return &ListBudgetsOutput{
		Budgets: results,
	}, nil
}
