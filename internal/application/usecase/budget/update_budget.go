package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// UpdateBudgetInput represents the input for replacing a budget's fields.
type UpdateBudgetInput struct {
	BudgetID uuid.UUID
	UserID   uuid.UUID
	BudgetFields
}

// UpdateBudgetOutput represents the output of updating a budget.
type UpdateBudgetOutput struct {
	Budget *entity.BudgetWithStatus
}

// UpdateBudgetUseCase handles full replacement of a budget.
type UpdateBudgetUseCase struct {
	budgetRepo adapter.BudgetRepository
	spending   adapter.SpendingCalculator
}

// NewUpdateBudgetUseCase creates a new UpdateBudgetUseCase instance.
func NewUpdateBudgetUseCase(budgetRepo adapter.BudgetRepository, spending adapter.SpendingCalculator) *UpdateBudgetUseCase {
	return &UpdateBudgetUseCase{
		budgetRepo: budgetRepo,
		spending:   spending,
	}
}

// Execute performs the budget update.
func (uc *UpdateBudgetUseCase) Execute(ctx context.Context, input UpdateBudgetInput) (*UpdateBudgetOutput, error) {
	valid, err := validateBudget(input.BudgetFields)
	if err != nil {
		return nil, err
	}

	budget, err := uc.budgetRepo.FindByID(ctx, input.BudgetID, input.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrBudgetNotFound) {
			return nil, notFoundError()
		}
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}

	budget.Category = valid.category
	budget.Amount = valid.amount
	budget.Period = valid.period
	budget.StartDate = valid.startDate
	budget.EndDate = valid.endDate
	budget.AlertThresholds = valid.thresholds
	budget.UpdatedAt = time.Now().UTC()

	if err := uc.budgetRepo.Update(ctx, budget); err != nil {
		if errors.Is(err, domainerror.ErrBudgetNotFound) {
			return nil, notFoundError()
		}
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}

	spent, err := uc.spending.SumSpending(ctx, budget.UserID, budget.Category, budget.StartDate, budget.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute budget spending: %w", err)
	}

	return &UpdateBudgetOutput{
		Budget: &entity.BudgetWithStatus{
			Budget: budget,
			Status: ComputeStatus(budget, spent),
		},
	}, nil
}
