package expense

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

// UpdateExpenseInput represents the input for replacing an expense's fields.
type UpdateExpenseInput struct {
	ExpenseID uuid.UUID
	UserID    uuid.UUID
	ExpenseFields
}

// UpdateExpenseOutput represents the output of updating an expense.
type UpdateExpenseOutput struct {
	Expense *entity.Expense
}

// UpdateExpenseUseCase handles expense updates.
type UpdateExpenseUseCase struct {
	expenseRepo adapter.ExpenseRepository
}

// NewUpdateExpenseUseCase creates a new UpdateExpenseUseCase instance.
func NewUpdateExpenseUseCase(expenseRepo adapter.ExpenseRepository) *UpdateExpenseUseCase {
	return &UpdateExpenseUseCase{
		expenseRepo: expenseRepo,
	}
}

// Execute performs the expense update.
func (uc *UpdateExpenseUseCase) Execute(ctx context.Context, input UpdateExpenseInput) (*UpdateExpenseOutput, error) {
	valid, err := validateExpense(input.ExpenseFields)
	if err != nil {
		return nil, err
	}

	expense, err := uc.expenseRepo.FindByID(ctx, input.ExpenseID, input.UserID)
	if err != nil {
		if errors.Is(err, domainerror.ErrExpenseNotFound) {
			return nil, notFoundError()
		}
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}

	expense.Title = valid.title
	expense.Amount = valid.amount
	expense.Category = valid.category
	expense.Date = valid.date
	expense.Notes = valid.notes
	expense.UpdatedAt = time.Now().UTC()

	if err := uc.expenseRepo.Update(ctx, expense); err != nil {
		if errors.Is(err, domainerror.ErrExpenseNotFound) {
			return nil, notFoundError()
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	return &UpdateExpenseOutput{
		Expense: expense,
	}, nil
}
