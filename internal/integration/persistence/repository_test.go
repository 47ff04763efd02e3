package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/integration/persistence/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.UserModel{},
		&model.ExpenseModel{},
		&model.BudgetModel{},
		&model.EmailQueueModel{},
	))
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedExpense(t *testing.T, repo adapter.ExpenseRepository, userID uuid.UUID, title, amount string, c entity.Category, d time.Time) *entity.Expense {
	t.Helper()
	e := entity.NewExpense(userID, title, decimal.RequireFromString(amount), c, d, "")
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestExpenseRepository_CRUD(t *testing.T) {
	repo := NewExpenseRepository(newTestDB(t))
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	e := seedExpense(t, repo, owner, "Lunch", "12.50", entity.CategoryFood, date(2024, time.March, 3))

	got, err := repo.FindByID(ctx, e.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", got.Title)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Amount))
	assert.Equal(t, date(2024, time.March, 3), got.Date)

	_, err = repo.FindByID(ctx, e.ID, stranger)
	assert.True(t, errors.Is(err, domainerror.ErrExpenseNotFound))

	e.Title = "Dinner"
	e.Amount = decimal.NewFromInt(30)
	require.NoError(t, repo.Update(ctx, e))
	got, err = repo.FindByID(ctx, e.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", got.Title)

	stolen := *e
	stolen.UserID = stranger
	assert.ErrorIs(t, repo.Update(ctx, &stolen), domainerror.ErrExpenseNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, e.ID, stranger), domainerror.ErrExpenseNotFound)

	require.NoError(t, repo.Delete(ctx, e.ID, owner))
	_, err = repo.FindByID(ctx, e.ID, owner)
	assert.ErrorIs(t, err, domainerror.ErrExpenseNotFound)
}

func TestExpenseRepository_FindByFilter(t *testing.T) {
	repo := NewExpenseRepository(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()

	seedExpense(t, repo, owner, "Coffee beans", "15", entity.CategoryFood, date(2024, time.March, 1))
	seedExpense(t, repo, owner, "Train ticket", "40", entity.CategoryTravel, date(2024, time.March, 2))
	seedExpense(t, repo, owner, "Iced COFFEE", "5", entity.CategoryFood, date(2024, time.March, 5))
	seedExpense(t, repo, owner, "Rent", "900", entity.CategoryRent, date(2024, time.February, 28))
	seedExpense(t, repo, uuid.New(), "coffee", "1", entity.CategoryFood, date(2024, time.March, 1))

	t.Run("defaults to date descending", func(t *testing.T) {
		res, err := repo.FindByFilter(ctx, adapter.ExpenseFilter{UserID: owner, Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, res.Expenses, 4)
		assert.Equal(t, int64(4), res.Total)
		assert.Equal(t, "Iced COFFEE", res.Expenses[0].Title)
		assert.Equal(t, "Rent", res.Expenses[3].Title)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		res, err := repo.FindByFilter(ctx, adapter.ExpenseFilter{UserID: owner, Search: "coffee", Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Total)
	})

	t.Run("category, dates and amounts combine", func(t *testing.T) {
		food := entity.CategoryFood
		start, end := date(2024, time.March, 1), date(2024, time.March, 31)
		minAmount := decimal.NewFromInt(10)
		res, err := repo.FindByFilter(ctx, adapter.ExpenseFilter{
			UserID:    owner,
			Category:  &food,
			StartDate: &start,
			EndDate:   &end,
			MinAmount: &minAmount,
			Page:      1,
			Limit:     10,
		})
		require.NoError(t, err)
		require.Len(t, res.Expenses, 1)
		assert.Equal(t, "Coffee beans", res.Expenses[0].Title)
	})

	t.Run("sorts by amount ascending", func(t *testing.T) {
		res, err := repo.FindByFilter(ctx, adapter.ExpenseFilter{
			UserID:    owner,
			SortBy:    entity.SortByAmount,
			SortOrder: entity.SortAsc,
			Page:      1,
			Limit:     10,
		})
		require.NoError(t, err)
		assert.Equal(t, "Iced COFFEE", res.Expenses[0].Title)
		assert.Equal(t, "Rent", res.Expenses[3].Title)
	})

	t.Run("paginates", func(t *testing.T) {
		res, err := repo.FindByFilter(ctx, adapter.ExpenseFilter{UserID: owner, Page: 2, Limit: 3})
		require.NoError(t, err)
		assert.Len(t, res.Expenses, 1)
		assert.Equal(t, 2, res.TotalPages)
		assert.Equal(t, 2, res.Page)
	})
}

func TestExpenseRepository_FindRecent(t *testing.T) {
	repo := NewExpenseRepository(newTestDB(t))
	owner := uuid.New()
	seedExpense(t, repo, owner, "old", "1", entity.CategoryOther, date(2024, time.January, 1))
	seedExpense(t, repo, owner, "new", "1", entity.CategoryOther, date(2024, time.March, 1))
	seedExpense(t, repo, owner, "mid", "1", entity.CategoryOther, date(2024, time.February, 1))

	got, err := repo.FindRecent(context.Background(), owner, 2)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Title)
	assert.Equal(t, "mid", got[1].Title)
}

func TestExpenseRepository_Aggregate(t *testing.T) {
	repo := NewExpenseRepository(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()

	seedExpense(t, repo, owner, "a", "100.10", entity.CategoryFood, date(2024, time.March, 3))
	seedExpense(t, repo, owner, "b", "49.90", entity.CategoryFood, date(2024, time.March, 3))
	seedExpense(t, repo, owner, "c", "50", entity.CategoryTravel, date(2024, time.March, 5))
	seedExpense(t, repo, uuid.New(), "d", "999", entity.CategoryFood, date(2024, time.March, 3))

	t.Run("none", func(t *testing.T) {
		rows, err := repo.Aggregate(ctx, owner, adapter.GroupByNone, adapter.AggregateFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, decimal.NewFromInt(200).Equal(rows[0].Total))
		assert.Equal(t, int64(3), rows[0].Count)
	})

	t.Run("none without rows is zero", func(t *testing.T) {
		rows, err := repo.Aggregate(ctx, uuid.New(), adapter.GroupByNone, adapter.AggregateFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Total.IsZero())
		assert.Zero(t, rows[0].Count)
	})

	t.Run("category", func(t *testing.T) {
		rows, err := repo.Aggregate(ctx, owner, adapter.GroupByCategory, adapter.AggregateFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, entity.CategoryFood, rows[0].Category)
		assert.True(t, decimal.NewFromInt(150).Equal(rows[0].Total))
		assert.Equal(t, int64(2), rows[0].Count)
	})

	t.Run("date", func(t *testing.T) {
		rows, err := repo.Aggregate(ctx, owner, adapter.GroupByDate, adapter.AggregateFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, date(2024, time.March, 3), rows[0].Date)
		assert.Equal(t, int64(2), rows[0].Count)
		assert.Equal(t, date(2024, time.March, 5), rows[1].Date)
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		start, end := date(2024, time.March, 5), date(2024, time.March, 5)
		rows, err := repo.Aggregate(ctx, owner, adapter.GroupByNone, adapter.AggregateFilter{StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(50).Equal(rows[0].Total))
	})

	t.Run("unknown grouping", func(t *testing.T) {
		_, err := repo.Aggregate(ctx, owner, adapter.GroupBy("week"), adapter.AggregateFilter{})
		assert.Error(t, err)
	})
}

func TestExpenseRepository_SumSpending(t *testing.T) {
	repo := NewExpenseRepository(newTestDB(t))
	owner := uuid.New()
	seedExpense(t, repo, owner, "in", "300", entity.CategoryFood, date(2024, time.March, 1))
	seedExpense(t, repo, owner, "edge", "200", entity.CategoryFood, date(2024, time.March, 31))
	seedExpense(t, repo, owner, "after", "50", entity.CategoryFood, date(2024, time.April, 1))
	seedExpense(t, repo, owner, "other", "70", entity.CategoryTravel, date(2024, time.March, 10))

	spent, err := repo.SumSpending(context.Background(), owner, entity.CategoryFood, date(2024, time.March, 1), date(2024, time.March, 31))

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(spent))
}

func TestBudgetRepository(t *testing.T) {
	repo := NewBudgetRepository(newTestDB(t))
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	b := entity.NewBudget(owner, entity.CategoryFood, decimal.NewFromInt(1000), entity.BudgetPeriodMonthly,
		date(2024, time.March, 1), date(2024, time.March, 31), entity.DefaultAlertThresholds())
	require.NoError(t, repo.Create(ctx, b))

	got, err := repo.FindByID(ctx, b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryFood, got.Category)
	assert.Equal(t, entity.DefaultAlertThresholds(), got.AlertThresholds)
	assert.Equal(t, date(2024, time.March, 31), got.EndDate)

	_, err = repo.FindByID(ctx, b.ID, stranger)
	assert.ErrorIs(t, err, domainerror.ErrBudgetNotFound)

	b.Amount = decimal.NewFromInt(1200)
	b.AlertThresholds = entity.AlertThresholds{Warning: 70, Critical: 95}
	require.NoError(t, repo.Update(ctx, b))

	list, err := repo.FindByUserID(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.NewFromInt(1200).Equal(list[0].Amount))
	assert.Equal(t, 70, list[0].AlertThresholds.Warning)

	assert.ErrorIs(t, repo.Delete(ctx, b.ID, stranger), domainerror.ErrBudgetNotFound)
	require.NoError(t, repo.Delete(ctx, b.ID, owner))
	list, err = repo.FindByUserID(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	u := entity.NewUser("ana@example.com", "Ana", "hash")
	require.NoError(t, repo.Create(ctx, u))

	exists, err := repo.ExistsByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.BudgetAlerts)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerror.ErrUserNotFound)
}

func TestEmailQueueRepository(t *testing.T) {
	repo := NewEmailQueueRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	due := entity.NewEmailJob(entity.TemplateWelcome, "a@b.co", "A", "Welcome", map[string]interface{}{"name": "A"})
	due.ScheduledAt = now.Add(-time.Minute)
	later := entity.NewEmailJob(entity.TemplateWelcome, "c@d.co", "C", "Welcome", nil)
	later.ScheduledAt = now.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, due))
	require.NoError(t, repo.Create(ctx, later))

	pending, err := repo.GetPendingJobs(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, due.ID, pending[0].ID)
	assert.Equal(t, "A", pending[0].TemplateData["name"])

	due.MarkSent("re_123")
	require.NoError(t, repo.Update(ctx, due))

	deleted, err := repo.DeleteSentBefore(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	jobs, err := repo.GetByRecipient(ctx, "c@d.co")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}
