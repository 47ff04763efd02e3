package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// BudgetFields holds the user-editable fields of a budget.
type BudgetFields struct {
	Category        string
	Amount          decimal.Decimal
	Period          string
	StartDate       time.Time
	EndDate         time.Time
	AlertThresholds *entity.AlertThresholds
}

type validBudget struct {
	category   entity.Category
	amount     decimal.Decimal
	period     entity.BudgetPeriod
	startDate  time.Time
	endDate    time.Time
	thresholds entity.AlertThresholds
}

func validateBudget(f BudgetFields) (*validBudget, error) {
	category := entity.Category(f.Category)
	if !category.IsValid() {
		return nil, domainerror.NewBudgetError(
			domainerror.ErrCodeInvalidBudgetCategory,
			"category must be one of the supported categories",
			domainerror.ErrInvalidCategory,
		)
	}

	if !f.Amount.IsPositive() {
		return nil, domainerror.NewBudgetError(
			domainerror.ErrCodeInvalidBudgetAmount,
			"budget amount must be greater than zero",
			domainerror.ErrInvalidBudgetAmount,
		)
	}

	period := entity.BudgetPeriod(f.Period)
	if f.Period == "" {
		period = entity.BudgetPeriodMonthly
	}
	if !period.IsValid() {
		return nil, domainerror.NewBudgetError(
			domainerror.ErrCodeInvalidBudgetPeriod,
			"period must be monthly or weekly",
			domainerror.ErrInvalidBudgetPeriod,
		)
	}

	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return nil, domainerror.NewBudgetError(
			domainerror.ErrCodeMissingBudgetFields,
			"start date and end date are required",
			domainerror.ErrInvalidBudgetDateRange,
		)
	}
	start, end := entity.CalendarDate(f.StartDate), entity.CalendarDate(f.EndDate)
	if end.Before(start) {
		return nil, domainerror.NewBudgetError(
			domainerror.ErrCodeInvalidBudgetDateRange,
			"end date must not be before start date",
			domainerror.ErrInvalidBudgetDateRange,
		)
	}

	thresholds := entity.DefaultAlertThresholds()
	if f.AlertThresholds != nil {
		thresholds = *f.AlertThresholds
	}
	if !thresholds.IsValid() {
		return nil, domainerror.NewBudgetError(
			domainerror.ErrCodeInvalidAlertThresholds,
			"alert thresholds must satisfy 0 < warning < critical <= 100",
			domainerror.ErrInvalidAlertThresholds,
		)
	}

	return &validBudget{
		category:   category,
		amount:     f.Amount,
		period:     period,
		startDate:  start,
		endDate:    end,
		thresholds: thresholds,
	}, nil
}

func notFoundError() error {
	return domainerror.NewBudgetError(
		domainerror.ErrCodeBudgetNotFound,
		"budget not found",
		domainerror.ErrBudgetNotFound,
	)
}
