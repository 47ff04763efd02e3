package dto

import (
	"github.com/expense-tracker/backend/internal/domain/entity"
)

// TotalsResponse represents a summed amount and the number of expenses behind it.
type TotalsResponse struct {
	Total string `json:"total"`
	Count int64  `json:"count"`
}

// CategoryTotalResponse represents one row of the category breakdown.
type CategoryTotalResponse struct {
	Category string `json:"category"`
	TotalsResponse
}

// MonthlyTotalResponse represents one calendar month of spending.
type MonthlyTotalResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	TotalsResponse
}

// WeekdayAverageResponse represents the average spend on one day of the week (1 = Sunday).
type WeekdayAverageResponse struct {
	Day         int    `json:"day"`
	AvgSpending string `json:"avg_spending"`
	Count       int64  `json:"count"`
}

// InsightsResponse represents the derived spending insights.
type InsightsResponse struct {
	PredictedNextMonth string                  `json:"predicted_next_month"`
	AvgDailySpend      string                  `json:"avg_daily_spend"`
	SpendingTrend      float64                 `json:"spending_trend"`
	HighestSpendingDay *WeekdayAverageResponse `json:"highest_spending_day"`
}

// AnalyticsResponse represents the analytics snapshot of a user.
type AnalyticsResponse struct {
	CategoryBreakdown []CategoryTotalResponse  `json:"category_breakdown"`
	MonthlyTrends     []MonthlyTotalResponse   `json:"monthly_trends"`
	WeeklyPattern     []WeekdayAverageResponse `json:"weekly_pattern"`
	TotalExpenses     TotalsResponse           `json:"total_expenses"`
	MonthlyExpenses   TotalsResponse           `json:"monthly_expenses"`
	TopCategory       string                   `json:"top_category"`
	Insights          InsightsResponse         `json:"insights"`
}

func toTotals(t entity.Totals) TotalsResponse {
	return TotalsResponse{Total: t.Total.StringFixed(2), Count: t.Count}
}

func toWeekday(w entity.WeekdayAverage) WeekdayAverageResponse {
	return WeekdayAverageResponse{
		Day:         w.Day,
		AvgSpending: w.AvgSpending.StringFixed(2),
		Count:       w.Count,
	}
}

// ToAnalyticsResponse converts an analytics snapshot to its API representation.
func ToAnalyticsResponse(s *entity.AnalyticsSnapshot) AnalyticsResponse {
	resp := AnalyticsResponse{
		CategoryBreakdown: make([]CategoryTotalResponse, 0, len(s.CategoryBreakdown)),
		MonthlyTrends:     make([]MonthlyTotalResponse, 0, len(s.MonthlyTrends)),
		WeeklyPattern:     make([]WeekdayAverageResponse, 0, len(s.WeeklyPattern)),
		TotalExpenses:     toTotals(s.TotalExpenses),
		MonthlyExpenses:   toTotals(s.MonthlyExpenses),
		TopCategory:       s.TopCategory,
		Insights: InsightsResponse{
			PredictedNextMonth: s.Insights.PredictedNextMonth.StringFixed(2),
			AvgDailySpend:      s.Insights.AvgDailySpend.StringFixed(2),
			SpendingTrend:      s.Insights.SpendingTrend,
		},
	}

	for _, c := range s.CategoryBreakdown {
		resp.CategoryBreakdown = append(resp.CategoryBreakdown, CategoryTotalResponse{
			Category:       string(c.Category),
			TotalsResponse: toTotals(c.Totals),
		})
	}
	for _, m := range s.MonthlyTrends {
		resp.MonthlyTrends = append(resp.MonthlyTrends, MonthlyTotalResponse{
			Year:           m.Year,
			Month:          int(m.Month),
			TotalsResponse: toTotals(m.Totals),
		})
	}
	for _, w := range s.WeeklyPattern {
		resp.WeeklyPattern = append(resp.WeeklyPattern, toWeekday(w))
	}
	if s.Insights.HighestSpendingDay != nil {
		day := toWeekday(*s.Insights.HighestSpendingDay)
		resp.Insights.HighestSpendingDay = &day
	}

	return resp
}
