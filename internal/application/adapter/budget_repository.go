package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// BudgetRepository defines the interface for budget persistence operations.
type BudgetRepository interface {
	// Create creates a new budget.
	Create(ctx context.Context, budget *entity.Budget) error

	// FindByID retrieves a budget owned by the given user.
	FindByID(ctx context.Context, id, userID uuid.UUID) (*entity.Budget, error)

	// FindByUserID retrieves all budgets of a user, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Budget, error)

	// Update saves changes to an existing budget.
	Update(ctx context.Context, budget *entity.Budget) error

	// Delete removes a budget owned by the given user.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
