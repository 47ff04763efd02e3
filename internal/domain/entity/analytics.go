package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoTopCategory is reported as top category when the owner has no expenses.
const NoTopCategory = "None"

// Totals is a sum and a record count.
type Totals struct {
	Total decimal.Decimal
	Count int64
}

// CategoryTotal aggregates expenses of one category.
type CategoryTotal struct {
	Category Category
	Totals
}

// MonthlyTotal aggregates expenses of one calendar month.
type MonthlyTotal struct {
	Year  int
	Month time.Month
	Totals
}

// WeekdayAverage aggregates expenses of one day of the week.
// Day uses Sunday=1 through Saturday=7.
type WeekdayAverage struct {
	Day         int
	AvgSpending decimal.Decimal
	Count       int64
}

// Insights holds the metrics derived from the aggregates.
type Insights struct {
	PredictedNextMonth decimal.Decimal
	AvgDailySpend      decimal.Decimal
	SpendingTrend      float64
	HighestSpendingDay *WeekdayAverage
}

// AnalyticsSnapshot is the full analytics view of one owner.
type AnalyticsSnapshot struct {
	CategoryBreakdown []CategoryTotal
	MonthlyTrends     []MonthlyTotal
	WeeklyPattern     []WeekdayAverage
	TotalExpenses     Totals
	MonthlyExpenses   Totals
	TopCategory       string
	Insights          Insights
}

// WeekdayNumber maps a time.Weekday to the Sunday=1 … Saturday=7 numbering.
func WeekdayNumber(d time.Weekday) int {
	return int(d) + 1
}
