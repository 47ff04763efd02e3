// Package budget contains budget-related use cases.
package budget

import (
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ComputeStatus derives the consumption status of a budget from the amount spent in its window.
// The level is chosen from the rounded percentage.
func ComputeStatus(b *entity.Budget, spent decimal.Decimal) entity.BudgetStatus {
	var percentage int64
	if b.Amount.IsPositive() {
		percentage = spent.Div(b.Amount).Mul(hundred).Round(0).IntPart()
	} else if spent.IsPositive() {
		percentage = 100
	}

	return entity.BudgetStatus{
		Spent:      spent,
		Remaining:  b.Amount.Sub(spent),
		Percentage: percentage,
		Level:      levelFor(percentage, b.AlertThresholds),
	}
}

func levelFor(percentage int64, t entity.AlertThresholds) entity.BudgetStatusLevel {
	switch {
	case percentage >= 100:
		return entity.BudgetStatusExceeded
	case percentage >= int64(t.Critical):
		return entity.BudgetStatusCritical
	case percentage >= int64(t.Warning):
		return entity.BudgetStatusWarning
	default:
		return entity.BudgetStatusSafe
	}
}
