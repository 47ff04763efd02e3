package assistant

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expense-tracker/backend/internal/application/adapter"
)

// predictionRecentExpenses is how many of the latest expenses are loaded for a prediction.
const predictionRecentExpenses = 50

// PredictSpendingInput represents the input for predicting next month's spending.
type PredictSpendingInput struct {
	UserID uuid.UUID
}

// PredictSpendingOutput represents the output of a spending prediction.
type PredictSpendingOutput struct {
	Prediction Prediction
	Source     Source
	Reason     FallbackReason
}

// PredictSpendingUseCase forecasts next month's spending from the user's recent expenses.
type PredictSpendingUseCase struct {
	expenseRepo adapter.ExpenseRepository
	normalizer  *Normalizer
}

// NewPredictSpendingUseCase creates a new PredictSpendingUseCase instance.
func NewPredictSpendingUseCase(expenseRepo adapter.ExpenseRepository, normalizer *Normalizer) *PredictSpendingUseCase {
	return &PredictSpendingUseCase{
		expenseRepo: expenseRepo,
		normalizer:  normalizer,
	}
}

// Execute performs the prediction.
func (uc *PredictSpendingUseCase) Execute(ctx context.Context, input PredictSpendingInput) (*PredictSpendingOutput, error) {
	expenses, err := uc.expenseRepo.FindRecent(ctx, input.UserID, predictionRecentExpenses)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent expenses: %w", err)
	}

	result := uc.normalizer.Predict(ctx, expenses)

	return &PredictSpendingOutput{
		Prediction: result.Value,
		Source:     result.Source,
		Reason:     result.Reason,
	}, nil
}
