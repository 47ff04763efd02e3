package dto

import (
	"time"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// ExpenseRequest represents the request body for expense creation and replacement.
type ExpenseRequest struct {
	Title    string   `json:"title" binding:"required,max=200"`
	Amount   *float64 `json:"amount" binding:"required"`
	Category string   `json:"category" binding:"required"`
	Date     string   `json:"date" binding:"required"`
	Notes    string   `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

// ExpenseResponse represents a single expense in API responses.
type ExpenseResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Amount    string    `json:"amount"`
	Category  string    `json:"category"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExpenseListResponse represents a page of expenses.
type ExpenseListResponse struct {
	Expenses    []ExpenseResponse `json:"expenses"`
	Total       int64             `json:"total"`
	TotalPages  int               `json:"total_pages"`
	CurrentPage int               `json:"current_page"`
}

// ToExpenseResponse converts a domain Expense entity to an ExpenseResponse DTO.
func ToExpenseResponse(e *entity.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID.String(),
		UserID:    e.UserID.String(),
		Title:     e.Title,
		Amount:    e.Amount.StringFixed(2),
		Category:  string(e.Category),
		Date:      e.Date.Format(entity.DateLayout),
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ToExpenseResponses converts a list of expenses.
func ToExpenseResponses(expenses []*entity.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, ToExpenseResponse(e))
	}
	return out
}
