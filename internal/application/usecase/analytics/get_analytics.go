// Package analytics contains the spending analytics use case.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
)

// MaxMonthlyTrends is the number of most recent months with data kept in the trend.
const MaxMonthlyTrends = 12

// GetAnalyticsInput represents the input for computing analytics.
type GetAnalyticsInput struct {
	UserID uuid.UUID
}

// GetAnalyticsOutput represents the output of computing analytics.
type GetAnalyticsOutput struct {
	Snapshot *entity.AnalyticsSnapshot
}

// GetAnalyticsUseCase builds the analytics snapshot of an owner.
type GetAnalyticsUseCase struct {
	aggregator adapter.ExpenseAggregator
	clock      adapter.Clock
	loc        *time.Location
}

// NewGetAnalyticsUseCase creates a new GetAnalyticsUseCase instance.
// Month boundaries are computed in loc.
func NewGetAnalyticsUseCase(aggregator adapter.ExpenseAggregator, clock adapter.Clock, loc *time.Location) *GetAnalyticsUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &GetAnalyticsUseCase{
		aggregator: aggregator,
		clock:      clock,
		loc:        loc,
	}
}

// Execute computes the snapshot.
func (uc *GetAnalyticsUseCase) Execute(ctx context.Context, input GetAnalyticsInput) (*GetAnalyticsOutput, error) {
	now := uc.clock.Now().In(uc.loc)
	monthStart, monthEnd := monthRange(now)

	var byCategory, byDate, all, month []adapter.GroupTotal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byCategory, err = uc.aggregator.Aggregate(gctx, input.UserID, adapter.GroupByCategory, adapter.AggregateFilter{})
		return wrap("category", err)
	})
	g.Go(func() error {
		var err error
		byDate, err = uc.aggregator.Aggregate(gctx, input.UserID, adapter.GroupByDate, adapter.AggregateFilter{})
		return wrap("date", err)
	})
	g.Go(func() error {
		var err error
		all, err = uc.aggregator.Aggregate(gctx, input.UserID, adapter.GroupByNone, adapter.AggregateFilter{})
		return wrap("total", err)
	})
	g.Go(func() error {
		var err error
		month, err = uc.aggregator.Aggregate(gctx, input.UserID, adapter.GroupByNone, adapter.AggregateFilter{
			StartDate: &monthStart,
			EndDate:   &monthEnd,
		})
		return wrap("current month", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	breakdown := categoryBreakdown(byCategory)
	trends := monthlyTrends(byDate)
	pattern := weeklyPattern(byDate)
	monthly := single(month)

	topCategory := entity.NoTopCategory
	if len(breakdown) > 0 {
		topCategory = string(breakdown[0].Category)
	}

	return &GetAnalyticsOutput{
		Snapshot: &entity.AnalyticsSnapshot{
			CategoryBreakdown: breakdown,
			MonthlyTrends:     trends,
			WeeklyPattern:     pattern,
			TotalExpenses:     single(all),
			MonthlyExpenses:   monthly,
			TopCategory:       topCategory,
			Insights: entity.Insights{
				PredictedNextMonth: PredictNextMonth(trends),
				AvgDailySpend:      AvgDailySpend(monthly.Total, now.Day()),
				SpendingTrend:      SpendingTrend(trends),
				HighestSpendingDay: HighestSpendingDay(pattern),
			},
		},
	}, nil
}

func wrap(dimension string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to aggregate expenses by %s: %w", dimension, err)
	}
	return nil
}

// monthRange returns the first and last calendar dates of the month containing now.
func monthRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

func single(rows []adapter.GroupTotal) entity.Totals {
	if len(rows) == 0 {
		return entity.Totals{Total: decimal.Zero}
	}
	return entity.Totals{Total: rows[0].Total, Count: rows[0].Count}
}

func categoryBreakdown(rows []adapter.GroupTotal) []entity.CategoryTotal {
	out := make([]entity.CategoryTotal, 0, len(rows))
	for _, r := range rows {
		if r.Count == 0 {
			continue
		}
		out = append(out, entity.CategoryTotal{
			Category: r.Category,
			Totals:   entity.Totals{Total: r.Total, Count: r.Count},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type yearMonth struct {
	year  int
	month time.Month
}

// monthlyTrends rolls per-day totals up into calendar months, newest first.
func monthlyTrends(byDate []adapter.GroupTotal) []entity.MonthlyTotal {
	months := make(map[yearMonth]*entity.MonthlyTotal)
	for _, r := range byDate {
		d := r.Date.UTC()
		key := yearMonth{d.Year(), d.Month()}
		m, ok := months[key]
		if !ok {
			m = &entity.MonthlyTotal{Year: key.year, Month: key.month, Totals: entity.Totals{Total: decimal.Zero}}
			months[key] = m
		}
		m.Total = m.Total.Add(r.Total)
		m.Count += r.Count
	}

	out := make([]entity.MonthlyTotal, 0, len(months))
	for _, m := range months {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})

	if len(out) > MaxMonthlyTrends {
		out = out[:MaxMonthlyTrends]
	}
	return out
}

// weeklyPattern averages the expense amount per day of week, Sunday=1 through Saturday=7.
func weeklyPattern(byDate []adapter.GroupTotal) []entity.WeekdayAverage {
	var totals [7]decimal.Decimal
	var counts [7]int64
	for _, r := range byDate {
		i := int(r.Date.UTC().Weekday())
		totals[i] = totals[i].Add(r.Total)
		counts[i] += r.Count
	}

	out := make([]entity.WeekdayAverage, 0, 7)
	for i := range totals {
		if counts[i] == 0 {
			continue
		}
		out = append(out, entity.WeekdayAverage{
			Day:         entity.WeekdayNumber(time.Weekday(i)),
			AvgSpending: totals[i].Div(decimal.NewFromInt(counts[i])).Round(2),
			Count:       counts[i],
		})
	}
	return out
}
