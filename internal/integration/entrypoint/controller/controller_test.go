package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/expense-tracker/backend/config"
	"github.com/expense-tracker/backend/internal/application/adapter"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/infra/db"
	"github.com/expense-tracker/backend/internal/infra/dependency"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/dto"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return testNow }

// stubGateway answers per operation. A missing answer is a gateway failure.
type stubGateway map[string]string

func (g stubGateway) Generate(_ context.Context, req adapter.GenerateRequest) (string, error) {
	text, ok := g[req.Operation]
	if !ok {
		return "", domainerror.NewAIGatewayError(domainerror.AIFailureNetwork, context.DeadlineExceeded)
	}
	return text, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Environment: "test"},
		JWT:       config.JWTConfig{Secret: "test-secret", AccessTokenExpiry: time.Hour},
		Analytics: config.AnalyticsConfig{Timezone: "UTC"},
		RateLimit: config.RateLimitConfig{
			LoginAttempts: 100,
			LoginWindow:   time.Minute,
			AIRequests:    100,
			AIWindow:      time.Minute,
		},
		Budget: config.BudgetConfig{StatusConcurrency: 4},
	}
}

type testServer struct {
	engine *gin.Engine
}

func newTestServer(t *testing.T, gateway adapter.AIGateway) *testServer {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gormDB.AutoMigrate(db.Models()...))

	injector, err := dependency.NewInjector(testConfig(), dependency.Dependencies{
		DB:      gormDB,
		Gateway: gateway,
		Clock:   fixedClock{},
	})
	require.NoError(t, err)

	return &testServer{engine: injector.Router.Setup("test")}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, path, token, field string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, "receipt.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email:    email,
		Name:     "Test User",
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.AuthResponse](t, w).AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func amount(v float64) *float64 {
	return &v
}

func createExpense(t *testing.T, s *testServer, token, title string, value float64, category, date string) dto.ExpenseResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/expenses", token, dto.ExpenseRequest{
		Title:    title,
		Amount:   amount(value),
		Category: category,
		Date:     date,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.ExpenseResponse](t, w)
}

var pngImage = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func TestHealth(t *testing.T) {
	s := newTestServer(t, stubGateway{})

	w := s.do(t, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, "disabled", body["cache"])
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t, stubGateway{})
	s.register(t, "ana@example.com")

	t.Run("duplicate email", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
			Email: "ana@example.com", Name: "Ana", Password: "secret123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "ana@example.com", Password: "secret123"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.AuthResponse](t, w)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "ana@example.com", resp.User.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "ana@example.com", Password: "secret124"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestExpenses_RequireAuthentication(t *testing.T) {
	s := newTestServer(t, stubGateway{})

	for _, path := range []string{"/api/v1/expenses", "/api/v1/budgets", "/api/v1/expenses/analytics", "/api/v1/ai/advice"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestExpenses_CRUDAndOwnership(t *testing.T) {
	s := newTestServer(t, stubGateway{})
	owner := s.register(t, "owner@example.com")
	other := s.register(t, "other@example.com")

	created := createExpense(t, s, owner, "Groceries", 45.5, "Food", "2024-03-10")
	assert.Equal(t, "45.50", created.Amount)
	assert.Equal(t, "2024-03-10", created.Date)
	path := "/api/v1/expenses/" + created.ID

	w := s.do(t, http.MethodGet, path, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Groceries", decode[dto.ExpenseResponse](t, w).Title)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/expenses/not-a-uuid", owner, nil).Code)

	w = s.do(t, http.MethodPut, path, owner, dto.ExpenseRequest{
		Title: "Weekly groceries", Amount: amount(50), Category: "Food", Date: "2024-03-11", Notes: "market",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.ExpenseResponse](t, w)
	assert.Equal(t, "Weekly groceries", updated.Title)
	assert.Equal(t, "market", updated.Notes)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, path, other, dto.ExpenseRequest{
		Title: "Hijack", Amount: amount(1), Category: "Food", Date: "2024-03-11",
	}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, other, nil).Code)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, path, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, owner, nil).Code)
}

func TestExpenses_Validation(t *testing.T) {
	s := newTestServer(t, stubGateway{})
	token := s.register(t, "ana@example.com")

	tests := []struct {
		name string
		req  dto.ExpenseRequest
		code string
	}{
		{name: "unknown category", req: dto.ExpenseRequest{Title: "X", Amount: amount(1), Category: "Groceries", Date: "2024-03-10"}, code: string(domainerror.ErrCodeInvalidCategory)},
		{name: "negative amount", req: dto.ExpenseRequest{Title: "X", Amount: amount(-1), Category: "Food", Date: "2024-03-10"}, code: string(domainerror.ErrCodeInvalidExpenseAmount)},
		{name: "bad date", req: dto.ExpenseRequest{Title: "X", Amount: amount(1), Category: "Food", Date: "10/03/2024"}, code: string(domainerror.ErrCodeInvalidExpenseDate)},
		{name: "missing amount", req: dto.ExpenseRequest{Title: "X", Category: "Food", Date: "2024-03-10"}, code: string(domainerror.ErrCodeMissingExpenseFields)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/expenses", token, tt.req)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode[dto.ErrorResponse](t, w).Code)
		})
	}
}

func TestExpenses_ListFilters(t *testing.T) {
	s := newTestServer(t, stubGateway{})
	token := s.register(t, "ana@example.com")

	createExpense(t, s, token, "Coffee", 4, "Food", "2024-03-01")
	createExpense(t, s, token, "Train ticket", 30, "Travel", "2024-03-05")
	createExpense(t, s, token, "Dinner", 60, "Food", "2024-03-09")

	w := s.do(t, http.MethodGet, "/api/v1/expenses?category=Food&sortBy=amount&sortOrder=asc", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ExpenseListResponse](t, w)
	require.Len(t, list.Expenses, 2)
	assert.Equal(t, "Coffee", list.Expenses[0].Title)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 1, list.CurrentPage)
	assert.Equal(t, 1, list.TotalPages)

	w = s.do(t, http.MethodGet, "/api/v1/expenses?search=TRAIN", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[dto.ExpenseListResponse](t, w).Total)

	w = s.do(t, http.MethodGet, "/api/v1/expenses?limit=2&page=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[dto.ExpenseListResponse](t, w)
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, "Coffee", list.Expenses[0].Title)
	assert.Equal(t, 2, list.TotalPages)
	assert.Equal(t, 2, list.CurrentPage)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/expenses?sortBy=merchant", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/expenses?minAmount=abc", token, nil).Code)
}

func TestExpenses_Analytics(t *testing.T) {
	s := newTestServer(t, stubGateway{})
	token := s.register(t, "ana@example.com")

	createExpense(t, s, token, "Rent", 800, "Rent", "2024-03-01")
	createExpense(t, s, token, "Dinner", 60, "Food", "2024-03-09")
	createExpense(t, s, token, "Lunch", 40, "Food", "2024-02-20")

	w := s.do(t, http.MethodGet, "/api/v1/expenses/analytics", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[dto.AnalyticsResponse](t, w)

	assert.Equal(t, "Rent", resp.TopCategory)
	assert.Equal(t, dto.TotalsResponse{Total: "900.00", Count: 3}, resp.TotalExpenses)
	assert.Equal(t, dto.TotalsResponse{Total: "860.00", Count: 2}, resp.MonthlyExpenses)
	require.Len(t, resp.MonthlyTrends, 2)
	assert.Equal(t, 3, resp.MonthlyTrends[0].Month)
	assert.Equal(t, "57.33", resp.Insights.AvgDailySpend)
	assert.NotNil(t, resp.Insights.HighestSpendingDay)
}

func TestBudgets_StatusAndValidation(t *testing.T) {
	s := newTestServer(t, stubGateway{})
	token := s.register(t, "ana@example.com")

	createExpense(t, s, token, "Dinner", 85, "Food", "2024-03-09")
	createExpense(t, s, token, "Outside window", 500, "Food", "2024-04-02")

	w := s.do(t, http.MethodPost, "/api/v1/budgets", token, dto.BudgetRequest{
		Category: "Food", Amount: 100, StartDate: "2024-03-01", EndDate: "2024-03-31",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.BudgetResponse](t, w)
	assert.Equal(t, "monthly", created.Period)
	assert.Equal(t, dto.AlertThresholdsDTO{Warning: 80, Critical: 90}, created.AlertThresholds)

	w = s.do(t, http.MethodGet, "/api/v1/budgets", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	budgets := decode[[]dto.BudgetResponse](t, w)
	require.Len(t, budgets, 1)
	assert.Equal(t, "85.00", budgets[0].Spent)
	assert.Equal(t, "15.00", budgets[0].Remaining)
	assert.Equal(t, int64(85), budgets[0].Percentage)
	assert.Equal(t, "warning", budgets[0].Status)

	w = s.do(t, http.MethodPost, "/api/v1/budgets", token, dto.BudgetRequest{
		Category: "Food", Amount: 100, StartDate: "2024-03-01", EndDate: "2024-03-31",
		AlertThresholds: &dto.AlertThresholdsDTO{Warning: 90, Critical: 80},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(domainerror.ErrCodeInvalidAlertThresholds), decode[dto.ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodPost, "/api/v1/budgets", token, dto.BudgetRequest{
		Category: "Food", Amount: 100, StartDate: "2024-03-31", EndDate: "2024-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	other := s.register(t, "other@example.com")
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/budgets/"+created.ID, other, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/v1/budgets/"+created.ID, token, nil).Code)
}

func TestAI_ParsedResults(t *testing.T) {
	s := newTestServer(t, stubGateway{
		"categorize":  "Food\n",
		"advice":      `{"tips": ["Cook at home"]}`,
		"predict":     "Sure! {\"prediction\": 1234.5, \"confidence\": 0.7}",
		"note":        "Team lunch downtown.",
		"parse_voice": `{"title": "Taxi", "amount": 20, "category": "Travel"}`,
		"parse_query": `{"category": "Food", "minAmount": "null", "sortBy": "amount"}`,
	})
	token := s.register(t, "ana@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/ai/categorize", token, dto.CategorizeRequest{Title: "Pizza"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.CategorizeResponse{Category: "Food", AIMeta: dto.AIMeta{Source: "parsed"}}, decode[dto.CategorizeResponse](t, w))

	w = s.do(t, http.MethodGet, "/api/v1/ai/advice", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Cook at home"}, decode[dto.AdviceResponse](t, w).Advice)

	w = s.do(t, http.MethodGet, "/api/v1/ai/prediction", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	prediction := decode[dto.PredictionResponse](t, w)
	assert.Equal(t, "1234.50", prediction.Prediction)
	assert.InDelta(t, 0.7, prediction.Confidence, 1e-9)

	w = s.do(t, http.MethodPost, "/api/v1/ai/note", token, dto.NoteRequest{Title: "Lunch", Amount: amount(25), Category: "Food"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Team lunch downtown.", decode[dto.NoteResponse](t, w).Note)

	w = s.do(t, http.MethodPost, "/api/v1/ai/parse-voice", token, dto.VoiceRequest{Text: "twenty dollars for a taxi"})
	require.Equal(t, http.StatusOK, w.Code)
	voice := decode[dto.VoiceResponse](t, w)
	require.NotNil(t, voice.Expense)
	assert.Equal(t, "Taxi", voice.Expense.Title)
	assert.Equal(t, "20.00", voice.Expense.Amount)
	assert.Equal(t, "2024-03-15", voice.Expense.Date)

	w = s.do(t, http.MethodPost, "/api/v1/ai/parse-query", token, dto.QueryRequest{Query: "food sorted by amount"})
	require.Equal(t, http.StatusOK, w.Code)
	filters := decode[dto.QueryResponse](t, w).Filters
	require.NotNil(t, filters.Category)
	assert.Equal(t, "Food", *filters.Category)
	assert.Nil(t, filters.MinAmount)
	require.NotNil(t, filters.SortBy)
	assert.Equal(t, "amount", *filters.SortBy)
}

func TestAI_GatewayFailureNeverFails(t *testing.T) {
	s := newTestServer(t, stubGateway{})
	token := s.register(t, "ana@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/ai/categorize", token, dto.CategorizeRequest{Title: "Pizza"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.CategorizeResponse{
		Category: "Other",
		AIMeta:   dto.AIMeta{Source: "fallback", Reason: "gateway_error"},
	}, decode[dto.CategorizeResponse](t, w))

	w = s.do(t, http.MethodGet, "/api/v1/ai/advice", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Track your spending regularly", "Set realistic budgets", "Review expenses monthly"}, decode[dto.AdviceResponse](t, w).Advice)

	w = s.do(t, http.MethodGet, "/api/v1/ai/prediction", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	prediction := decode[dto.PredictionResponse](t, w)
	assert.Equal(t, "0.00", prediction.Prediction)
	assert.Zero(t, prediction.Confidence)

	w = s.do(t, http.MethodPost, "/api/v1/ai/note", token, dto.NoteRequest{Title: "Lunch", Amount: amount(12.5), Category: "Food"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Food expense of 12.5", decode[dto.NoteResponse](t, w).Note)

	w = s.do(t, http.MethodPost, "/api/v1/ai/parse-voice", token, dto.VoiceRequest{Text: "mumble"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[dto.VoiceResponse](t, w).Expense)

	w = s.do(t, http.MethodPost, "/api/v1/ai/parse-query", token, dto.QueryRequest{Query: "anything"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.FiltersResponse{}, decode[dto.QueryResponse](t, w).Filters)
}

func TestAI_InputValidation(t *testing.T) {
	s := newTestServer(t, stubGateway{})
	token := s.register(t, "ana@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/ai/categorize", token, map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(domainerror.ErrCodeInvalidAIInput), decode[dto.ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodPost, "/api/v1/ai/note", token, dto.NoteRequest{Title: "Lunch", Amount: amount(5), Category: "Snacks"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOCR(t *testing.T) {
	s := newTestServer(t, stubGateway{
		"extract_image": `{"title": "Blue Cafe", "amount": "12.5", "category": "Food", "date": "2024-03-10", "merchant": "Blue Cafe", "confidence": 0.9}`,
	})
	token := s.register(t, "ana@example.com")

	t.Run("extract", func(t *testing.T) {
		w := s.upload(t, "/api/v1/ocr/extract", token, "image", pngImage)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[dto.ExtractResponse](t, w)
		assert.Equal(t, "12.50", resp.Data.Amount)
		assert.Equal(t, "Blue Cafe", resp.Data.Merchant)
		assert.Equal(t, "parsed", resp.Source)
	})

	t.Run("create expense", func(t *testing.T) {
		w := s.upload(t, "/api/v1/ocr/create-expense", token, "image", pngImage)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decode[dto.CreateFromImageResponse](t, w)
		assert.Equal(t, "Merchant: Blue Cafe", resp.Expense.Notes)
		assert.Equal(t, "2024-03-10", resp.Expense.Date)
	})

	t.Run("missing file", func(t *testing.T) {
		w := s.upload(t, "/api/v1/ocr/extract", token, "", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(domainerror.ErrCodeInvalidImage), decode[dto.ErrorResponse](t, w).Code)
	})

	t.Run("not an image", func(t *testing.T) {
		w := s.upload(t, "/api/v1/ocr/extract", token, "image", []byte("just some text"))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(domainerror.ErrCodeInvalidImage), decode[dto.ErrorResponse](t, w).Code)
	})
}

func TestOCR_GatewayFailureStoresFallback(t *testing.T) {
	s := newTestServer(t, stubGateway{})
	token := s.register(t, "ana@example.com")

	w := s.upload(t, "/api/v1/ocr/create-expense", token, "image", pngImage)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[dto.CreateFromImageResponse](t, w)
	assert.Equal(t, "Payment from Image", resp.Expense.Title)
	assert.Equal(t, "Other", resp.Expense.Category)
	assert.Equal(t, "Auto-extracted from image", resp.Expense.Notes)
	assert.Equal(t, "fallback", resp.Source)
}
