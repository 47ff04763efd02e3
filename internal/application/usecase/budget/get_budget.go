package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// GetBudgetInput represents the input for getting a budget.
type GetBudgetInput struct {
	BudgetID uuid.UUID
	UserID   uuid.UUID
}

// GetBudgetOutput represents the output of getting a budget.
type GetBudgetOutput struct {
	Budget *entity.BudgetWithStatus
}

// GetBudgetUseCase handles getting a budget by ID with its current status.
type GetBudgetUseCase struct {
	budgetRepo adapter.BudgetRepository
	spending   adapter.SpendingCalculator
}

// NewGetBudgetUseCase creates a new GetBudgetUseCase instance.
func NewGetBudgetUseCase(budgetRepo adapter.BudgetRepository, spending adapter.SpendingCalculator) *GetBudgetUseCase {
	return &GetBudgetUseCase{
		budgetRepo: budgetRepo,
		spending:   spending,
	}
}

// Execute performs the budget retrieval.
func (uc *GetBudgetUseCase) Execute(ctx context.Context, input GetBudgetInput) (*GetBudgetOutput, error) {
	budget, err := uc.budgetRepo.FindByID(ctx, input.BudgetID, input.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrBudgetNotFound) {
			return nil, notFoundError()
		}
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}

	spent, err := uc.spending.SumSpending(ctx, budget.UserID, budget.Category, budget.StartDate, budget.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute budget spending: %w", err)
	}

	return &GetBudgetOutput{
		Budget: &entity.BudgetWithStatus{
			Budget: budget,
			Status: ComputeStatus(budget, spent),
		},
	}, nil
}
