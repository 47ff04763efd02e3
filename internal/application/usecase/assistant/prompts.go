package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

const (
	adviceExpenseLimit     = 10
	predictionExpenseLimit = 20
)

func categoryList() string {
	names := make([]string, len(entity.Categories))
	for i, c := range entity.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func imagePrompt() string {
	return fmt.Sprintf(`Analyze this payment screenshot or SMS and extract expense information.
Return ONLY a valid JSON object with these exact fields:
{
  "title": "expense description",
  "amount": 100,
  "category": "Food",
  "date": "2024-01-03",
  "merchant": "store name",
  "confidence": 0.8
}

Rules:
- amount must be a number (not string)
- category must be one of: %s
- date format: YYYY-MM-DD
- confidence: 0.1 to 1.0
- If unclear, use reasonable defaults`, categoryList())
}

func categorizePrompt(title, merchant string) string {
	return fmt.Sprintf("Categorize this expense: %q from %q. Return only one word from: %s",
		title, merchant, categoryList())
}

func advicePrompt(expenses []*entity.Expense, budgets []*entity.Budget) string {
	return fmt.Sprintf(`Based on expenses: %s and budgets: %s, give 3 short financial tips in JSON format: {"tips": ["tip1", "tip2", "tip3"]}`,
		expensesJSON(expenses, adviceExpenseLimit), budgetsJSON(budgets))
}

func predictionPrompt(expenses []*entity.Expense) string {
	return fmt.Sprintf(`Based on these expenses: %s, predict next month's total spending. Return JSON: {"prediction": number, "confidence": 0.1-1.0}`,
		expensesJSON(expenses, predictionExpenseLimit))
}

func notePrompt(title string, amount decimal.Decimal, category entity.Category) string {
	return fmt.Sprintf("Generate a brief, helpful note for this expense: %q - %s in %s category. Return only the note text, max 50 words.",
		title, amount.String(), category)
}

func voicePrompt(text string, today time.Time) string {
	return fmt.Sprintf(`Parse this voice input into expense data: %q
Today is %s.
Return ONLY valid JSON:
{
  "title": "expense description",
  "amount": 100,
  "category": "Food",
  "date": "2024-01-03",
  "confidence": 0.8
}

Rules:
- Extract amount as number
- Category: %s
- Use today's date if not specified
- confidence 0.1-1.0 based on clarity`, text, today.Format(entity.DateLayout), categoryList())
}

func queryPrompt(query string, today time.Time) string {
	return fmt.Sprintf(`Parse this natural language expense query into search filters: %q
Today is %s.
Return ONLY valid JSON:
{
  "category": "Food",
  "startDate": "2024-01-01",
  "endDate": "2024-01-31",
  "minAmount": 100,
  "maxAmount": 1000,
  "search": "keyword",
  "sortBy": "date",
  "sortOrder": "desc"
}

Rules:
- category: %s (or null)
- dates in YYYY-MM-DD format (or null)
- amounts as numbers (or null)
- search for keywords in title/notes (or null)
- sortBy: date, amount, category, title (default: date)
- sortOrder: asc, desc (default: desc)
- Only include fields that are mentioned in the query`, query, today.Format(entity.DateLayout), categoryList())
}

type promptExpense struct {
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Category entity.Category `json:"category"`
	Date     string          `json:"date"`
}

type promptBudget struct {
	Category  entity.Category `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Period    string          `json:"period"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
}

func expensesJSON(expenses []*entity.Expense, limit int) string {
	if len(expenses) > limit {
		expenses = expenses[:limit]
	}
	items := make([]promptExpense, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, promptExpense{
			Title:    e.Title,
			Amount:   e.Amount,
			Category: e.Category,
			Date:     e.Date.Format(entity.DateLayout),
		})
	}
	return mustJSON(items)
}

func budgetsJSON(budgets []*entity.Budget) string {
	items := make([]promptBudget, 0, len(budgets))
	for _, b := range budgets {
		items = append(items, promptBudget{
			Category:  b.Category,
			Amount:    b.Amount,
			Period:    string(b.Period),
			StartDate: b.StartDate.Format(entity.DateLayout),
			EndDate:   b.EndDate.Format(entity.DateLayout),
		})
	}
	return mustJSON(items)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
