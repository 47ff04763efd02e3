// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// ExpenseFilter holds the criteria of an expense listing. Nil fields do not filter.
type ExpenseFilter struct {
	UserID    uuid.UUID
	Category  *entity.Category
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	SortBy    entity.SortField
	SortOrder entity.SortOrder
	Page      int
	Limit     int
}

// ExpenseListResult holds one page of expenses.
type ExpenseListResult struct {
	Expenses   []*entity.Expense
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// GroupBy selects the dimension of an aggregation.
type GroupBy string

const (
	GroupByNone     GroupBy = "none"
	GroupByCategory GroupBy = "category"
	GroupByDate     GroupBy = "date"
)

// AggregateFilter restricts an aggregation. Nil fields do not filter; dates are inclusive.
type AggregateFilter struct {
	Category  *entity.Category
	StartDate *time.Time
	EndDate   *time.Time
}

// GroupTotal is one row of an aggregation. Only the key matching the GroupBy is set.
type GroupTotal struct {
	Category entity.Category
	Date     time.Time
	Total    decimal.Decimal
	Count    int64
}

// ExpenseAggregator exposes the grouped-aggregation primitive over an owner's expenses.
type ExpenseAggregator interface {
	// Aggregate sums and counts the owner's expenses grouped by the given dimension.
	Aggregate(ctx context.Context, userID uuid.UUID, groupBy GroupBy, filter AggregateFilter) ([]GroupTotal, error)
}

// SpendingCalculator sums an owner's spending in one category over a date range.
type SpendingCalculator interface {
	// SumSpending returns the total amount spent in the category between both dates inclusive.
	SumSpending(ctx context.Context, userID uuid.UUID, category entity.Category, startDate, endDate time.Time) (decimal.Decimal, error)
}

// ExpenseRepository defines the interface for expense persistence operations.
type ExpenseRepository interface {
	ExpenseAggregator
	SpendingCalculator

	// Create creates a new expense.
	Create(ctx context.Context, expense *entity.Expense) error

	// FindByID retrieves an expense owned by the given user.
	FindByID(ctx context.Context, id, userID uuid.UUID) (*entity.Expense, error)

	// FindByFilter retrieves a page of expenses matching the filter.
	FindByFilter(ctx context.Context, filter ExpenseFilter) (*ExpenseListResult, error)

	// FindRecent retrieves the owner's most recent expenses, newest first.
	FindRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Expense, error)

	// Update saves changes to an existing expense.
	Update(ctx context.Context, expense *entity.Expense) error

	// Delete removes an expense owned by the given user.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
