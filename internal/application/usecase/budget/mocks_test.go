package budget

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

type mockBudgetRepo struct {
	budgets []*entity.Budget
	err     error
}

func (m *mockBudgetRepo) Create(_ context.Context, b *entity.Budget) error {
	if m.err != nil {
		return m.err
	}
	m.budgets = append(m.budgets, b)
	return nil
}

func (m *mockBudgetRepo) FindByID(_ context.Context, id, userID uuid.UUID) (*entity.Budget, error) {
	for _, b := range m.budgets {
		if b.ID == id && b.UserID == userID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, domainerror.ErrBudgetNotFound
}

func (m *mockBudgetRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*entity.Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBudgetRepo) Update(_ context.Context, b *entity.Budget) error {
	for i, existing := range m.budgets {
		if existing.ID == b.ID {
			m.budgets[i] = b
			return nil
		}
	}
	return domainerror.ErrBudgetNotFound
}

func (m *mockBudgetRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	for i, b := range m.budgets {
		if b.ID == id && b.UserID == userID {
			m.budgets = append(m.budgets[:i], m.budgets[i+1:]...)
			return nil
		}
	}
	return domainerror.ErrBudgetNotFound
}

// mockSpending returns a fixed amount per category.
type mockSpending struct {
	byCategory map[entity.Category]decimal.Decimal
	err        error
	calls      atomic.Int32
}

func (m *mockSpending) SumSpending(_ context.Context, _ uuid.UUID, category entity.Category, _, _ time.Time) (decimal.Decimal, error) {
	m.calls.Add(1)
	if m.err != nil {
		return decimal.Zero, m.err
	}
	return m.byCategory[category], nil
}

type mockUserRepo struct {
	user *entity.User
}

func (m *mockUserRepo) Create(context.Context, *entity.User) error { return nil }

func (m *mockUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, domainerror.ErrUserNotFound
	}
	return m.user, nil
}

func (m *mockUserRepo) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, domainerror.ErrUserNotFound
}

func (m *mockUserRepo) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }

type mockEmailService struct {
	mu     sync.Mutex
	alerts []adapter.QueueBudgetAlertInput
}

func (m *mockEmailService) QueueBudgetAlertEmail(_ context.Context, input adapter.QueueBudgetAlertInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, input)
	return nil
}

func (m *mockEmailService) QueueWelcomeEmail(context.Context, adapter.QueueWelcomeInput) error {
	return nil
}

type memoryTracker struct {
	keys map[string]time.Duration
}

func (m *memoryTracker) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if m.keys == nil {
		m.keys = map[string]time.Duration{}
	}
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = ttl
	return true, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newBudget(userID uuid.UUID, category entity.Category, amount int64) *entity.Budget {
	return entity.NewBudget(userID, category, decimal.NewFromInt(amount), entity.BudgetPeriodMonthly,
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		entity.DefaultAlertThresholds())
}
