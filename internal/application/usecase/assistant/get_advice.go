package assistant

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expense-tracker/backend/internal/application/adapter"
)

// adviceRecentExpenses is how many of the latest expenses feed the advice prompt.
const adviceRecentExpenses = 20

// GetAdviceInput represents the input for generating budget advice.
type GetAdviceInput struct {
	UserID uuid.UUID
}

// GetAdviceOutput represents the output of generating budget advice.
type GetAdviceOutput struct {
	Tips   []string
	Source Source
	Reason FallbackReason
}

// GetAdviceUseCase generates financial tips from the user's recent expenses and budgets.
type GetAdviceUseCase struct {
	expenseRepo adapter.ExpenseRepository
	budgetRepo  adapter.BudgetRepository
	normalizer  *Normalizer
}

// NewGetAdviceUseCase creates a new GetAdviceUseCase instance.
func NewGetAdviceUseCase(expenseRepo adapter.ExpenseRepository, budgetRepo adapter.BudgetRepository, normalizer *Normalizer) *GetAdviceUseCase {
	return &GetAdviceUseCase{
		expenseRepo: expenseRepo,
		budgetRepo:  budgetRepo,
		normalizer:  normalizer,
	}
}

// Execute performs the advice generation.
func (uc *GetAdviceUseCase) Execute(ctx context.Context, input GetAdviceInput) (*GetAdviceOutput, error) {
	expenses, err := uc.expenseRepo.FindRecent(ctx, input.UserID, adviceRecentExpenses)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent expenses: %w", err)
	}

	budgets, err := uc.budgetRepo.FindByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}

	result := uc.normalizer.Advice(ctx, expenses, budgets)

	return &GetAdviceOutput{
		Tips:   result.Value,
		Source: result.Source,
		Reason: result.Reason,
	}, nil
}
