package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/integration/persistence/model"
)

// sortColumns maps sort fields to their columns.
var sortColumns = map[entity.SortField]string{
	entity.SortByDate:     "date",
	entity.SortByAmount:   "amount",
	entity.SortByCategory: "category",
	entity.SortByTitle:    "title",
}

// expenseRepository implements the adapter.ExpenseRepository interface.
type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository instance.
func NewExpenseRepository(db *gorm.DB) adapter.ExpenseRepository {
	return &expenseRepository{
		db: db,
	}
}

// Create creates a new expense in the database.
func (r *expenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	return r.db.WithContext(ctx).Create(model.ExpenseFromEntity(expense)).Error
}

// FindByID retrieves an expense owned by the given user.
func (r *expenseRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*entity.Expense, error) {
	var expenseModel model.ExpenseModel
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&expenseModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrExpenseNotFound
		}
		return nil, result.Error
	}
	return expenseModel.ToEntity(), nil
}

// FindByFilter retrieves a page of expenses matching the filter.
func (r *expenseRepository) FindByFilter(ctx context.Context, filter adapter.ExpenseFilter) (*adapter.ExpenseListResult, error) {
	query := r.db.WithContext(ctx).Model(&model.ExpenseModel{}).Where("user_id = ?", filter.UserID)

	if filter.Category != nil {
		query = query.Where("category = ?", string(*filter.Category))
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", entity.CalendarDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", entity.CalendarDate(*filter.EndDate))
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(notes) LIKE ?)", searchPattern, searchPattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns[entity.SortByDate]
	}
	direction := "DESC"
	if filter.SortOrder == entity.SortAsc {
		direction = "ASC"
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var models []model.ExpenseModel
	result := query.
		Order(fmt.Sprintf("%s %s, created_at DESC", column, direction)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	expenses := make([]*entity.Expense, len(models))
	for i := range models {
		expenses[i] = models[i].ToEntity()
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &adapter.ExpenseListResult{
		Expenses:   expenses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// FindRecent retrieves the owner's most recent expenses, newest first.
func (r *expenseRepository) FindRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Expense, error) {
	var models []model.ExpenseModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	expenses := make([]*entity.Expense, len(models))
	for i := range models {
		expenses[i] = models[i].ToEntity()
	}
	return expenses, nil
}

// Update saves changes to an existing expense.
func (r *expenseRepository) Update(ctx context.Context, expense *entity.Expense) error {
	m := model.ExpenseFromEntity(expense)
	result := r.db.WithContext(ctx).
		Model(&model.ExpenseModel{}).
		Where("id = ? AND user_id = ?", expense.ID, expense.UserID).
		Updates(map[string]any{
			"title":      m.Title,
			"amount":     m.Amount,
			"category":   m.Category,
			"date":       m.Date,
			"notes":      m.Notes,
			"updated_at": m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrExpenseNotFound
	}
	return nil
}

// Delete removes an expense owned by the given user.
func (r *expenseRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.ExpenseModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrExpenseNotFound
	}
	return nil
}

// groupRow is the scan target of an aggregation query.
type groupRow struct {
	Category string
	Date     time.Time
	Total    decimal.Decimal
	Count    int64
}

// Aggregate sums and counts the owner's expenses grouped by the given dimension.
func (r *expenseRepository) Aggregate(ctx context.Context, userID uuid.UUID, groupBy adapter.GroupBy, filter adapter.AggregateFilter) ([]adapter.GroupTotal, error) {
	query := r.db.WithContext(ctx).Model(&model.ExpenseModel{}).Where("user_id = ?", userID)
	query = applyAggregateFilter(query, filter)

	switch groupBy {
	case adapter.GroupByNone:
		var row groupRow
		err := query.Select("COALESCE(SUM(amount), 0) as total, COUNT(*) as count").Scan(&row).Error
		if err != nil {
			return nil, err
		}
		return []adapter.GroupTotal{{Total: row.Total.Round(2), Count: row.Count}}, nil

	case adapter.GroupByCategory:
		var rows []groupRow
		err := query.
			Select("category, COALESCE(SUM(amount), 0) as total, COUNT(*) as count").
			Group("category").
			Order("category").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		out := make([]adapter.GroupTotal, len(rows))
		for i, row := range rows {
			out[i] = adapter.GroupTotal{Category: entity.Category(row.Category), Total: row.Total.Round(2), Count: row.Count}
		}
		return out, nil

	case adapter.GroupByDate:
		var rows []groupRow
		err := query.
			Select("date, COALESCE(SUM(amount), 0) as total, COUNT(*) as count").
			Group("date").
			Order("date").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		out := make([]adapter.GroupTotal, len(rows))
		for i, row := range rows {
			out[i] = adapter.GroupTotal{Date: entity.CalendarDate(row.Date.UTC()), Total: row.Total.Round(2), Count: row.Count}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported grouping %q", groupBy)
	}
}

// SumSpending returns the total amount spent in the category between both dates inclusive.
func (r *expenseRepository) SumSpending(ctx context.Context, userID uuid.UUID, category entity.Category, startDate, endDate time.Time) (decimal.Decimal, error) {
	totals, err := r.Aggregate(ctx, userID, adapter.GroupByNone, adapter.AggregateFilter{
		Category:  &category,
		StartDate: &startDate,
		EndDate:   &endDate,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return totals[0].Total, nil
}

func applyAggregateFilter(query *gorm.DB, filter adapter.AggregateFilter) *gorm.DB {
	if filter.Category != nil {
		query = query.Where("category = ?", string(*filter.Category))
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", entity.CalendarDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", entity.CalendarDate(*filter.EndDate))
	}
	return query
}
