// Package expense contains expense-related use cases.
package expense

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// Field limits.
const (
	MaxTitleLength = 200
	MaxNotesLength = 1000
)

// ExpenseFields holds the user-editable fields of an expense.
type ExpenseFields struct {
	Title    string
	Amount   decimal.Decimal
	Category string
	Date     time.Time
	Notes    string
}

type validExpense struct {
	title    string
	amount   decimal.Decimal
	category entity.Category
	date     time.Time
	notes    string
}

func validateExpense(f ExpenseFields) (*validExpense, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" || utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeInvalidExpenseTitle,
			"title is required and must be at most 200 characters",
			domainerror.ErrInvalidExpenseTitle,
		)
	}

	if f.Amount.IsNegative() {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeInvalidExpenseAmount,
			"amount must not be negative",
			domainerror.ErrInvalidExpenseAmount,
		)
	}

	category := entity.Category(f.Category)
	if !category.IsValid() {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeInvalidCategory,
			"category must be one of the supported categories",
			domainerror.ErrInvalidCategory,
		)
	}

	if f.Date.IsZero() {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeInvalidExpenseDate,
			"date is required",
			domainerror.ErrInvalidExpenseDate,
		)
	}

	notes := strings.TrimSpace(f.Notes)
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeInvalidExpenseNotes,
			"notes must be at most 1000 characters",
			domainerror.ErrInvalidExpenseNotes,
		)
	}

	return &validExpense{
		title:    title,
		amount:   f.Amount.Round(2),
		category: category,
		date:     entity.CalendarDate(f.Date),
		notes:    notes,
	}, nil
}

func notFoundError() error {
	return domainerror.NewExpenseError(
		domainerror.ErrCodeExpenseNotFound,
		"expense not found",
		domainerror.ErrExpenseNotFound,
	)
}
