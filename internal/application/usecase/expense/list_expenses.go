package expense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListExpensesInput holds the raw listing parameters. Empty strings do not filter.
type ListExpensesInput struct {
	UserID    uuid.UUID
	Category  string
	StartDate string
	EndDate   string
	Search    string
	MinAmount string
	MaxAmount string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// ListExpensesOutput represents the output of listing expenses.
type ListExpensesOutput struct {
	Expenses   []*entity.Expense
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ListExpensesUseCase handles expense listing.
type ListExpensesUseCase struct {
	expenseRepo adapter.ExpenseRepository
}

// NewListExpensesUseCase creates a new ListExpensesUseCase instance.
func NewListExpensesUseCase(expenseRepo adapter.ExpenseRepository) *ListExpensesUseCase {
	return &ListExpensesUseCase{
		expenseRepo: expenseRepo,
	}
}

// Execute performs the expense listing.
func (uc *ListExpensesUseCase) Execute(ctx context.Context, input ListExpensesInput) (*ListExpensesOutput, error) {
	filter, err := BuildFilter(input)
	if err != nil {
		return nil, err
	}

	result, err := uc.expenseRepo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	return &ListExpensesOutput{
		Expenses:   result.Expenses,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	}, nil
}

// BuildFilter validates the raw parameters and builds the repository filter in one step.
func BuildFilter(input ListExpensesInput) (adapter.ExpenseFilter, error) {
	category, err := optionalCategory(input.Category)
	if err != nil {
		return adapter.ExpenseFilter{}, err
	}
	startDate, err := optionalDate("startDate", input.StartDate)
	if err != nil {
		return adapter.ExpenseFilter{}, err
	}
	endDate, err := optionalDate("endDate", input.EndDate)
	if err != nil {
		return adapter.ExpenseFilter{}, err
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return adapter.ExpenseFilter{}, filterError("endDate must not be before startDate")
	}
	minAmount, err := optionalAmount("minAmount", input.MinAmount)
	if err != nil {
		return adapter.ExpenseFilter{}, err
	}
	maxAmount, err := optionalAmount("maxAmount", input.MaxAmount)
	if err != nil {
		return adapter.ExpenseFilter{}, err
	}
	if minAmount != nil && maxAmount != nil && maxAmount.LessThan(*minAmount) {
		return adapter.ExpenseFilter{}, filterError("maxAmount must not be below minAmount")
	}

	sortBy := entity.SortByDate
	if input.SortBy != "" {
		sortBy = entity.SortField(strings.ToLower(input.SortBy))
		if !sortBy.IsValid() {
			return adapter.ExpenseFilter{}, filterError("sortBy must be one of date, amount, category, title")
		}
	}
	sortOrder := entity.SortDesc
	if input.SortOrder != "" {
		sortOrder = entity.SortOrder(strings.ToLower(input.SortOrder))
		if !sortOrder.IsValid() {
			return adapter.ExpenseFilter{}, filterError("sortOrder must be asc or desc")
		}
	}

	return adapter.ExpenseFilter{
		UserID:    input.UserID,
		Category:  category,
		StartDate: startDate,
		EndDate:   endDate,
		Search:    strings.TrimSpace(input.Search),
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Page:      clampPage(input.Page),
		Limit:     clampLimit(input.Limit),
	}, nil
}

func optionalCategory(s string) (*entity.Category, error) {
	if s == "" {
		return nil, nil
	}
	c := entity.Category(s)
	if !c.IsValid() {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeInvalidCategory,
			"category must be one of the supported categories",
			domainerror.ErrInvalidCategory,
		)
	}
	return &c, nil
}

func optionalDate(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := entity.ParseCalendarDate(s)
	if err != nil {
		return nil, filterError(name + " must use YYYY-MM-DD")
	}
	return &d, nil
}

func optionalAmount(name, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil, filterError(name + " must be a non-negative number")
	}
	return &d, nil
}

func clampPage(page int) int {
	if page < 1 {
		return DefaultPage
	}
	return page
}

func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func filterError(message string) error {
	return domainerror.NewExpenseError(
		domainerror.ErrCodeInvalidExpenseFilter,
		message,
		domainerror.ErrInvalidExpenseFilter,
	)
}
