package expense

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expense-tracker/backend/internal/application/usecase/assistant"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

func assertExpenseErrorCode(t *testing.T, err error, code domainerror.ExpenseErrorCode) {
	t.Helper()
	var expErr *domainerror.ExpenseError
	require.True(t, errors.As(err, &expErr), "expected ExpenseError, got %v", err)
	assert.Equal(t, code, expErr.Code)
}

func validFields() ExpenseFields {
	return ExpenseFields{
		Title:    "  Groceries  ",
		Amount:   decimal.RequireFromString("42.50"),
		Category: "Food",
		Date:     time.Date(2024, time.March, 5, 18, 30, 0, 0, time.UTC),
		Notes:    "weekly shop",
	}
}

func TestCreateExpense(t *testing.T) {
	repo := &mockExpenseRepo{}
	userID := uuid.New()

	out, err := NewCreateExpenseUseCase(repo).Execute(context.Background(), CreateExpenseInput{UserID: userID, ExpenseFields: validFields()})

	require.NoError(t, err)
	require.Len(t, repo.expenses, 1)
	assert.Equal(t, "Groceries", out.Expense.Title)
	assert.Equal(t, userID, out.Expense.UserID)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), out.Expense.Date)
}

func TestCreateExpense_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ExpenseFields)
		code   domainerror.ExpenseErrorCode
	}{
		{name: "blank title", mutate: func(f *ExpenseFields) { f.Title = "   " }, code: domainerror.ErrCodeInvalidExpenseTitle},
		{name: "long title", mutate: func(f *ExpenseFields) { f.Title = strings.Repeat("a", 201) }, code: domainerror.ErrCodeInvalidExpenseTitle},
		{name: "negative amount", mutate: func(f *ExpenseFields) { f.Amount = decimal.NewFromInt(-1) }, code: domainerror.ErrCodeInvalidExpenseAmount},
		{name: "unknown category", mutate: func(f *ExpenseFields) { f.Category = "Pets" }, code: domainerror.ErrCodeInvalidCategory},
		{name: "lowercase category", mutate: func(f *ExpenseFields) { f.Category = "food" }, code: domainerror.ErrCodeInvalidCategory},
		{name: "missing date", mutate: func(f *ExpenseFields) { f.Date = time.Time{} }, code: domainerror.ErrCodeInvalidExpenseDate},
		{name: "long notes", mutate: func(f *ExpenseFields) { f.Notes = strings.Repeat("n", 1001) }, code: domainerror.ErrCodeInvalidExpenseNotes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockExpenseRepo{}
			fields := validFields()
			tt.mutate(&fields)

			_, err := NewCreateExpenseUseCase(repo).Execute(context.Background(), CreateExpenseInput{UserID: uuid.New(), ExpenseFields: fields})

			assertExpenseErrorCode(t, err, tt.code)
			assert.Empty(t, repo.expenses)
		})
	}
}

func TestCreateExpense_ZeroAmountAllowed(t *testing.T) {
	fields := validFields()
	fields.Amount = decimal.Zero

	_, err := NewCreateExpenseUseCase(&mockExpenseRepo{}).Execute(context.Background(), CreateExpenseInput{UserID: uuid.New(), ExpenseFields: fields})

	assert.NoError(t, err)
}

func TestGetUpdateDelete_NotOwned(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	existing := entity.NewExpense(owner, "Taxi", decimal.NewFromInt(20), entity.CategoryTravel, time.Now(), "")
	repo := &mockExpenseRepo{expenses: []*entity.Expense{existing}}
	ctx := context.Background()

	_, err := NewGetExpenseUseCase(repo).Execute(ctx, GetExpenseInput{ExpenseID: existing.ID, UserID: stranger})
	assertExpenseErrorCode(t, err, domainerror.ErrCodeExpenseNotFound)

	_, err = NewUpdateExpenseUseCase(repo).Execute(ctx, UpdateExpenseInput{ExpenseID: existing.ID, UserID: stranger, ExpenseFields: validFields()})
	assertExpenseErrorCode(t, err, domainerror.ErrCodeExpenseNotFound)

	err = NewDeleteExpenseUseCase(repo).Execute(ctx, DeleteExpenseInput{ExpenseID: existing.ID, UserID: stranger})
	assertExpenseErrorCode(t, err, domainerror.ErrCodeExpenseNotFound)

	assert.Len(t, repo.expenses, 1)
	assert.Equal(t, "Taxi", repo.expenses[0].Title)
}

func TestUpdateExpense(t *testing.T) {
	owner := uuid.New()
	existing := entity.NewExpense(owner, "Taxi", decimal.NewFromInt(20), entity.CategoryTravel, time.Now(), "")
	repo := &mockExpenseRepo{expenses: []*entity.Expense{existing}}

	out, err := NewUpdateExpenseUseCase(repo).Execute(context.Background(), UpdateExpenseInput{
		ExpenseID: existing.ID, UserID: owner, ExpenseFields: validFields(),
	})

	require.NoError(t, err)
	assert.Equal(t, "Groceries", out.Expense.Title)
	assert.Equal(t, entity.CategoryFood, repo.expenses[0].Category)
}

func TestBuildFilter_Defaults(t *testing.T) {
	userID := uuid.New()

	filter, err := BuildFilter(ListExpensesInput{UserID: userID})

	require.NoError(t, err)
	assert.Equal(t, userID, filter.UserID)
	assert.Nil(t, filter.Category)
	assert.Nil(t, filter.StartDate)
	assert.Equal(t, entity.SortByDate, filter.SortBy)
	assert.Equal(t, entity.SortDesc, filter.SortOrder)
	assert.Equal(t, DefaultPage, filter.Page)
	assert.Equal(t, DefaultLimit, filter.Limit)
}

func TestBuildFilter_AllFields(t *testing.T) {
	filter, err := BuildFilter(ListExpensesInput{
		Category:  "Travel",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Search:    "  uber ",
		MinAmount: "10",
		MaxAmount: "99.5",
		SortBy:    "Amount",
		SortOrder: "ASC",
		Page:      3,
		Limit:     500,
	})

	require.NoError(t, err)
	require.NotNil(t, filter.Category)
	assert.Equal(t, entity.CategoryTravel, *filter.Category)
	assert.Equal(t, time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), *filter.EndDate)
	assert.Equal(t, "uber", filter.Search)
	assert.True(t, decimal.RequireFromString("99.5").Equal(*filter.MaxAmount))
	assert.Equal(t, entity.SortByAmount, filter.SortBy)
	assert.Equal(t, entity.SortAsc, filter.SortOrder)
	assert.Equal(t, 3, filter.Page)
	assert.Equal(t, MaxLimit, filter.Limit)
}

func TestBuildFilter_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input ListExpensesInput
		code  domainerror.ExpenseErrorCode
	}{
		{name: "unknown category", input: ListExpensesInput{Category: "Pets"}, code: domainerror.ErrCodeInvalidCategory},
		{name: "bad date", input: ListExpensesInput{StartDate: "01/02/2024"}, code: domainerror.ErrCodeInvalidExpenseFilter},
		{name: "inverted dates", input: ListExpensesInput{StartDate: "2024-02-01", EndDate: "2024-01-01"}, code: domainerror.ErrCodeInvalidExpenseFilter},
		{name: "negative amount", input: ListExpensesInput{MinAmount: "-1"}, code: domainerror.ErrCodeInvalidExpenseFilter},
		{name: "inverted amounts", input: ListExpensesInput{MinAmount: "50", MaxAmount: "10"}, code: domainerror.ErrCodeInvalidExpenseFilter},
		{name: "unknown sort field", input: ListExpensesInput{SortBy: "merchant"}, code: domainerror.ErrCodeInvalidExpenseFilter},
		{name: "unknown sort order", input: ListExpensesInput{SortOrder: "up"}, code: domainerror.ErrCodeInvalidExpenseFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildFilter(tt.input)

			assertExpenseErrorCode(t, err, tt.code)
		})
	}
}

func TestListExpenses_PassesBuiltFilter(t *testing.T) {
	repo := &mockExpenseRepo{}

	out, err := NewListExpensesUseCase(repo).Execute(context.Background(), ListExpensesInput{UserID: uuid.New(), Limit: 5, Category: "Rent"})

	require.NoError(t, err)
	assert.Equal(t, 5, out.Limit)
	require.NotNil(t, repo.lastFilter.Category)
	assert.Equal(t, entity.CategoryRent, *repo.lastFilter.Category)
}

func TestCreateExpenseFromImage(t *testing.T) {
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

	t.Run("stores parsed candidate with merchant note", func(t *testing.T) {
		repo := &mockExpenseRepo{}
		gw := stubGateway{text: `{"title":"Coffee","amount":4.5,"category":"Food","date":"2024-03-14","merchant":"Bean Bar","confidence":0.9}`}
		uc := NewCreateExpenseFromImageUseCase(repo, assistant.NewNormalizer(gw, fixedClock{now: now}, time.UTC, nil))

		out, err := uc.Execute(context.Background(), CreateExpenseFromImageInput{UserID: uuid.New(), Image: []byte{1}})

		require.NoError(t, err)
		assert.Equal(t, assistant.SourceParsed, out.Source)
		assert.Equal(t, "Coffee", out.Expense.Title)
		assert.Equal(t, "Merchant: Bean Bar", out.Expense.Notes)
		assert.Len(t, repo.expenses, 1)
	})

	t.Run("stores fallback candidate when model fails", func(t *testing.T) {
		repo := &mockExpenseRepo{}
		gw := stubGateway{err: domainerror.NewAIGatewayError(domainerror.AIFailureTimeout, context.DeadlineExceeded)}
		uc := NewCreateExpenseFromImageUseCase(repo, assistant.NewNormalizer(gw, fixedClock{now: now}, time.UTC, nil))

		out, err := uc.Execute(context.Background(), CreateExpenseFromImageInput{UserID: uuid.New(), Image: []byte{1}})

		require.NoError(t, err)
		assert.Equal(t, assistant.SourceFallback, out.Source)
		assert.Equal(t, "Payment from Image", out.Expense.Title)
		assert.Equal(t, AutoExtractedNote, out.Expense.Notes)
		assert.True(t, out.Expense.Amount.IsZero())
	})

	t.Run("cuts oversized text to the field limits", func(t *testing.T) {
		repo := &mockExpenseRepo{}
		title, merchant := strings.Repeat("x", 250), strings.Repeat("é", 1200)
		gw := stubGateway{text: `{"title":"` + title + `","amount":12,"category":"Shopping","merchant":"` + merchant + `"}`}
		uc := NewCreateExpenseFromImageUseCase(repo, assistant.NewNormalizer(gw, fixedClock{now: now}, time.UTC, nil))

		out, err := uc.Execute(context.Background(), CreateExpenseFromImageInput{UserID: uuid.New(), Image: []byte{1}})

		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("x", MaxTitleLength), out.Expense.Title)
		assert.Equal(t, MaxNotesLength, utf8.RuneCountInString(out.Expense.Notes))
		assert.True(t, strings.HasPrefix(out.Expense.Notes, "Merchant: é"))
		assert.Len(t, repo.expenses, 1)
	})

	t.Run("rejects empty image", func(t *testing.T) {
		uc := NewCreateExpenseFromImageUseCase(&mockExpenseRepo{}, assistant.NewNormalizer(stubGateway{}, fixedClock{now: now}, time.UTC, nil))

		_, err := uc.Execute(context.Background(), CreateExpenseFromImageInput{UserID: uuid.New()})

		var aiErr *domainerror.AIError
		require.True(t, errors.As(err, &aiErr))
		assert.Equal(t, domainerror.ErrCodeInvalidImage, aiErr.Code)
	})
}
