package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

type recordingNotifier struct {
	got []entity.BudgetWithStatus
	err error
}

func (n *recordingNotifier) Notify(_ context.Context, _ uuid.UUID, budgets []entity.BudgetWithStatus) error {
	n.got = budgets
	return n.err
}

func TestListBudgets(t *testing.T) {
	userID := uuid.New()
	food := newBudget(userID, entity.CategoryFood, 1000)
	travel := newBudget(userID, entity.CategoryTravel, 500)
	rent := newBudget(userID, entity.CategoryRent, 2000)
	repo := &mockBudgetRepo{budgets: []*entity.Budget{food, travel, rent, newBudget(uuid.New(), entity.CategoryFood, 10)}}
	spending := &mockSpending{byCategory: map[entity.Category]decimal.Decimal{
		entity.CategoryFood:   decimal.NewFromInt(850),
		entity.CategoryTravel: decimal.NewFromInt(500),
	}}
	notifier := &recordingNotifier{err: errors.New("smtp down")}

	uc := NewListBudgetsUseCase(repo, spending, notifier, 2)
	out, err := uc.Execute(context.Background(), ListBudgetsInput{UserID: userID})

	require.NoError(t, err)
	require.Len(t, out.Budgets, 3)
	assert.EqualValues(t, 3, spending.calls.Load())

	assert.Same(t, food, out.Budgets[0].Budget)
	assert.Equal(t, int64(85), out.Budgets[0].Status.Percentage)
	assert.Equal(t, entity.BudgetStatusWarning, out.Budgets[0].Status.Level)
	assert.Equal(t, entity.BudgetStatusExceeded, out.Budgets[1].Status.Level)
	assert.Equal(t, entity.BudgetStatusSafe, out.Budgets[2].Status.Level)
	assert.True(t, out.Budgets[2].Status.Spent.IsZero())

	assert.Len(t, notifier.got, 3)
}

func TestListBudgets_DoesNotMutateBudgets(t *testing.T) {
	userID := uuid.New()
	b := newBudget(userID, entity.CategoryFood, 1000)
	before := *b
	repo := &mockBudgetRepo{budgets: []*entity.Budget{b}}
	spending := &mockSpending{byCategory: map[entity.Category]decimal.Decimal{entity.CategoryFood: decimal.NewFromInt(300)}}
	uc := NewListBudgetsUseCase(repo, spending, nil, 0)

	first, err := uc.Execute(context.Background(), ListBudgetsInput{UserID: userID})
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), ListBudgetsInput{UserID: userID})
	require.NoError(t, err)

	assert.Equal(t, first.Budgets[0].Status, second.Budgets[0].Status)
	assert.Equal(t, before, *b)
}

func TestListBudgets_SpendingError(t *testing.T) {
	userID := uuid.New()
	repo := &mockBudgetRepo{budgets: []*entity.Budget{newBudget(userID, entity.CategoryFood, 100)}}
	uc := NewListBudgetsUseCase(repo, &mockSpending{err: errors.New("db down")}, nil, 1)

	_, err := uc.Execute(context.Background(), ListBudgetsInput{UserID: userID})

	assert.Error(t, err)
}

func TestListBudgets_Empty(t *testing.T) {
	uc := NewListBudgetsUseCase(&mockBudgetRepo{}, &mockSpending{}, &recordingNotifier{}, 4)

	out, err := uc.Execute(context.Background(), ListBudgetsInput{UserID: uuid.New()})

	require.NoError(t, err)
	assert.Empty(t, out.Budgets)
}

func TestGetBudget_NotOwned(t *testing.T) {
	owner := uuid.New()
	b := newBudget(owner, entity.CategoryFood, 100)
	uc := NewGetBudgetUseCase(&mockBudgetRepo{budgets: []*entity.Budget{b}}, &mockSpending{})

	_, err := uc.Execute(context.Background(), GetBudgetInput{BudgetID: b.ID, UserID: uuid.New()})

	assertBudgetErrorCode(t, err, "BDG-020001")
}

func TestGetBudget(t *testing.T) {
	owner := uuid.New()
	b := newBudget(owner, entity.CategoryFood, 1000)
	spending := &mockSpending{byCategory: map[entity.Category]decimal.Decimal{entity.CategoryFood: decimal.NewFromInt(1000)}}
	uc := NewGetBudgetUseCase(&mockBudgetRepo{budgets: []*entity.Budget{b}}, spending)

	out, err := uc.Execute(context.Background(), GetBudgetInput{BudgetID: b.ID, UserID: owner})

	require.NoError(t, err)
	assert.Equal(t, entity.BudgetStatusExceeded, out.Budget.Status.Level)
	assert.True(t, out.Budget.Status.Remaining.IsZero())
}

func TestDeleteBudget(t *testing.T) {
	owner := uuid.New()
	b := newBudget(owner, entity.CategoryFood, 100)
	repo := &mockBudgetRepo{budgets: []*entity.Budget{b}}
	uc := NewDeleteBudgetUseCase(repo)

	assertBudgetErrorCode(t, uc.Execute(context.Background(), DeleteBudgetInput{BudgetID: b.ID, UserID: uuid.New()}), "BDG-020001")
	require.NoError(t, uc.Execute(context.Background(), DeleteBudgetInput{BudgetID: b.ID, UserID: owner}))
	assert.Empty(t, repo.budgets)
}

func TestUpdateBudget(t *testing.T) {
	owner := uuid.New()
	b := newBudget(owner, entity.CategoryFood, 100)
	repo := &mockBudgetRepo{budgets: []*entity.Budget{b}}
	uc := NewUpdateBudgetUseCase(repo, &mockSpending{})

	out, err := uc.Execute(context.Background(), UpdateBudgetInput{
		BudgetID: b.ID,
		UserID:   owner,
		BudgetFields: BudgetFields{
			Category:        "Travel",
			Amount:          decimal.NewFromInt(400),
			Period:          "weekly",
			StartDate:       time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2024, time.April, 7, 0, 0, 0, 0, time.UTC),
			AlertThresholds: &entity.AlertThresholds{Warning: 60, Critical: 95},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, entity.CategoryTravel, out.Budget.Budget.Category)
	assert.Equal(t, entity.BudgetPeriodWeekly, out.Budget.Budget.Period)
	assert.Equal(t, 60, repo.budgets[0].AlertThresholds.Warning)
}
