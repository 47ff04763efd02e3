package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the period type of a budget.
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
)

// IsValid reports whether p is a supported period.
func (p BudgetPeriod) IsValid() bool {
	return p == BudgetPeriodMonthly || p == BudgetPeriodWeekly
}

// Default alert thresholds, in percent of the budget amount.
const (
	DefaultWarningThreshold  = 80
	DefaultCriticalThreshold = 90
)

// AlertThresholds holds the warning and critical percentages of a budget.
type AlertThresholds struct {
	Warning  int
	Critical int
}

// DefaultAlertThresholds returns the {80, 90} threshold pair.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		Warning:  DefaultWarningThreshold,
		Critical: DefaultCriticalThreshold,
	}
}

// IsValid reports whether 0 < Warning < Critical <= 100.
func (t AlertThresholds) IsValid() bool {
	return t.Warning > 0 && t.Warning < t.Critical && t.Critical <= 100
}

// Budget represents a spending ceiling for one category over a date range.
type Budget struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Category        Category
	Amount          decimal.Decimal
	Period          BudgetPeriod
	StartDate       time.Time
	EndDate         time.Time
	AlertThresholds AlertThresholds
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBudget creates a new Budget entity.
func NewBudget(userID uuid.UUID, category Category, amount decimal.Decimal, period BudgetPeriod, startDate, endDate time.Time, thresholds AlertThresholds) *Budget {
	now := time.Now().UTC()

	return &Budget{
		ID:              uuid.New(),
		UserID:          userID,
		Category:        category,
		Amount:          amount,
		Period:          period,
		StartDate:       CalendarDate(startDate),
		EndDate:         CalendarDate(endDate),
		AlertThresholds: thresholds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// BudgetStatusLevel is the severity bucket of a budget's consumption.
type BudgetStatusLevel string

const (
	BudgetStatusSafe     BudgetStatusLevel = "safe"
	BudgetStatusWarning  BudgetStatusLevel = "warning"
	BudgetStatusCritical BudgetStatusLevel = "critical"
	BudgetStatusExceeded BudgetStatusLevel = "exceeded"
)

// IsAlert reports whether the level should notify the owner.
func (l BudgetStatusLevel) IsAlert() bool {
	return l == BudgetStatusWarning || l == BudgetStatusCritical || l == BudgetStatusExceeded
}

// BudgetStatus is the read-time view of a budget's consumption. It is never persisted.
type BudgetStatus struct {
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage int64
	Level      BudgetStatusLevel
}

// BudgetWithStatus merges a budget with its derived status.
type BudgetWithStatus struct {
	Budget *Budget
	Status BudgetStatus
}
