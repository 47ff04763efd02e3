package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

var (
	growthFactor = decimal.RequireFromString("1.05")
	hundred      = decimal.NewFromInt(100)
)

// PredictNextMonth returns the mean monthly total grown by 5%, or zero without data.
func PredictNextMonth(trends []entity.MonthlyTotal) decimal.Decimal {
	if len(trends) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, m := range trends {
		sum = sum.Add(m.Total)
	}
	return sum.Div(decimal.NewFromInt(int64(len(trends)))).Mul(growthFactor).Round(2)
}

// AvgDailySpend divides the month-to-date total by the calendar day of the month.
func AvgDailySpend(monthTotal decimal.Decimal, dayOfMonth int) decimal.Decimal {
	if dayOfMonth <= 0 {
		return decimal.Zero
	}
	return monthTotal.Div(decimal.NewFromInt(int64(dayOfMonth))).Round(2)
}

// SpendingTrend is the percent change of the newest month over the one before it.
// It is 0 with fewer than two months or when the previous month total is zero.
func SpendingTrend(trends []entity.MonthlyTotal) float64 {
	if len(trends) < 2 {
		return 0
	}
	newest, previous := trends[0].Total, trends[1].Total
	if previous.IsZero() {
		return 0
	}
	return newest.Sub(previous).Div(previous).Mul(hundred).Round(1).InexactFloat64()
}

// HighestSpendingDay returns the day with the highest average, the earliest day on ties.
func HighestSpendingDay(pattern []entity.WeekdayAverage) *entity.WeekdayAverage {
	if len(pattern) == 0 {
		return nil
	}
	best := pattern[0]
	for _, d := range pattern[1:] {
		if d.AvgSpending.GreaterThan(best.AvgSpending) {
			best = d
		}
	}
	return &best
}
