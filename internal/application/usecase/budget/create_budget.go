package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
)

// CreateBudgetInput represents the input for creating a budget.
type CreateBudgetInput struct {
	UserID uuid.UUID
	BudgetFields
}

// CreateBudgetOutput represents the output of creating a budget.
type CreateBudgetOutput struct {
	Budget *entity.BudgetWithStatus
}

// CreateBudgetUseCase handles budget creation.
type CreateBudgetUseCase struct {
	budgetRepo adapter.BudgetRepository
}

// NewCreateBudgetUseCase creates a new CreateBudgetUseCase instance.
func NewCreateBudgetUseCase(budgetRepo adapter.BudgetRepository) *CreateBudgetUseCase {
	return &CreateBudgetUseCase{
		budgetRepo: budgetRepo,
	}
}

// Execute performs the budget creation.
func (uc *CreateBudgetUseCase) Execute(ctx context.Context, input CreateBudgetInput) (*CreateBudgetOutput, error) {
	valid, err := validateBudget(input.BudgetFields)
	if err != nil {
		return nil, err
	}

	budget := entity.NewBudget(input.UserID, valid.category, valid.amount, valid.period, valid.startDate, valid.endDate, valid.thresholds)

	if err := uc.budgetRepo.Create(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	return &CreateBudgetOutput{
		Budget: &entity.BudgetWithStatus{
			Budget: budget,
			Status: ComputeStatus(budget, decimal.Zero),
		},
	}, nil
}
