package budget

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

func TestBudgetAlertNotifier(t *testing.T) {
	user := entity.NewUser("ana@example.com", "Ana", "hash")
	food := newBudget(user.ID, entity.CategoryFood, 1000)
	rent := newBudget(user.ID, entity.CategoryRent, 1000)
	budgets := []entity.BudgetWithStatus{
		{Budget: food, Status: ComputeStatus(food, decimal.NewFromInt(850))},
		{Budget: rent, Status: ComputeStatus(rent, decimal.NewFromInt(100))},
	}

	emails := &mockEmailService{}
	tracker := &memoryTracker{}
	clock := fixedClock{now: time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)}
	n := NewBudgetAlertNotifier(&mockUserRepo{user: user}, emails, tracker, clock)

	require.NoError(t, n.Notify(context.Background(), user.ID, budgets))
	require.NoError(t, n.Notify(context.Background(), user.ID, budgets))

	require.Len(t, emails.alerts, 1)
	alert := emails.alerts[0]
	assert.Equal(t, "ana@example.com", alert.UserEmail)
	assert.Equal(t, food.ID, alert.BudgetID)
	assert.Equal(t, entity.BudgetStatusWarning, alert.Level)
	assert.Equal(t, int64(85), alert.Percentage)

	// Claim lasts until the day after the window closes.
	assert.Equal(t, 12*24*time.Hour, tracker.keys[AlertKey(food.ID, entity.BudgetStatusWarning)])
}

func TestBudgetAlertNotifier_EscalationAlertsAgain(t *testing.T) {
	user := entity.NewUser("ana@example.com", "Ana", "hash")
	food := newBudget(user.ID, entity.CategoryFood, 1000)
	emails := &mockEmailService{}
	n := NewBudgetAlertNotifier(&mockUserRepo{user: user}, emails, &memoryTracker{}, fixedClock{now: time.Now()})

	for _, spent := range []int64{850, 950, 1100} {
		status := ComputeStatus(food, decimal.NewFromInt(spent))
		require.NoError(t, n.Notify(context.Background(), user.ID, []entity.BudgetWithStatus{{Budget: food, Status: status}}))
	}

	require.Len(t, emails.alerts, 3)
	assert.Equal(t, entity.BudgetStatusExceeded, emails.alerts[2].Level)
}

func TestBudgetAlertNotifier_AlertsDisabled(t *testing.T) {
	user := entity.NewUser("ana@example.com", "Ana", "hash")
	user.BudgetAlerts = false
	food := newBudget(user.ID, entity.CategoryFood, 1000)
	emails := &mockEmailService{}
	n := NewBudgetAlertNotifier(&mockUserRepo{user: user}, emails, &memoryTracker{}, fixedClock{now: time.Now()})

	err := n.Notify(context.Background(), user.ID, []entity.BudgetWithStatus{
		{Budget: food, Status: ComputeStatus(food, decimal.NewFromInt(2000))},
	})

	require.NoError(t, err)
	assert.Empty(t, emails.alerts)
}

func TestBudgetAlertNotifier_NothingToAlertSkipsUserLookup(t *testing.T) {
	food := newBudget(uuid.New(), entity.CategoryFood, 1000)
	n := NewBudgetAlertNotifier(&mockUserRepo{}, &mockEmailService{}, &memoryTracker{}, fixedClock{now: time.Now()})

	err := n.Notify(context.Background(), food.UserID, []entity.BudgetWithStatus{
		{Budget: food, Status: ComputeStatus(food, decimal.Zero)},
	})

	assert.NoError(t, err)
}
