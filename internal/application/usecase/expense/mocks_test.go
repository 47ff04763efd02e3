package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

type mockExpenseRepo struct {
	expenses   []*entity.Expense
	lastFilter adapter.ExpenseFilter
}

func (m *mockExpenseRepo) Create(_ context.Context, e *entity.Expense) error {
	m.expenses = append(m.expenses, e)
	return nil
}

func (m *mockExpenseRepo) FindByID(_ context.Context, id, userID uuid.UUID) (*entity.Expense, error) {
	for _, e := range m.expenses {
		if e.ID == id && e.UserID == userID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, domainerror.ErrExpenseNotFound
}

func (m *mockExpenseRepo) FindByFilter(_ context.Context, filter adapter.ExpenseFilter) (*adapter.ExpenseListResult, error) {
	m.lastFilter = filter
	return &adapter.ExpenseListResult{Expenses: m.expenses, Total: int64(len(m.expenses)), Page: filter.Page, Limit: filter.Limit, TotalPages: 1}, nil
}

func (m *mockExpenseRepo) FindRecent(context.Context, uuid.UUID, int) ([]*entity.Expense, error) {
	return m.expenses, nil
}

func (m *mockExpenseRepo) Update(_ context.Context, e *entity.Expense) error {
	for i, existing := range m.expenses {
		if existing.ID == e.ID {
			m.expenses[i] = e
			return nil
		}
	}
	return domainerror.ErrExpenseNotFound
}

func (m *mockExpenseRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	for i, e := range m.expenses {
		if e.ID == id && e.UserID == userID {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			return nil
		}
	}
	return domainerror.ErrExpenseNotFound
}

func (m *mockExpenseRepo) Aggregate(context.Context, uuid.UUID, adapter.GroupBy, adapter.AggregateFilter) ([]adapter.GroupTotal, error) {
	return nil, nil
}

func (m *mockExpenseRepo) SumSpending(context.Context, uuid.UUID, entity.Category, time.Time, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubGateway struct {
	text string
	err  error
}

func (g stubGateway) Generate(context.Context, adapter.GenerateRequest) (string, error) {
	return g.text, g.err
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }
