package dto

import (
	"time"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// AlertThresholdsDTO carries the warning and critical percentages of a budget.
type AlertThresholdsDTO struct {
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

// BudgetRequest represents the request body for budget creation and replacement.
type BudgetRequest struct {
	Category        string              `json:"category" binding:"required"`
	Amount          float64             `json:"amount" binding:"required"`
	Period          string              `json:"period,omitempty" binding:"omitempty,oneof=monthly weekly"`
	StartDate       string              `json:"start_date" binding:"required"`
	EndDate         string              `json:"end_date" binding:"required"`
	AlertThresholds *AlertThresholdsDTO `json:"alert_thresholds,omitempty"`
}

// BudgetResponse represents a budget merged with its derived status.
type BudgetResponse struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	Category        string             `json:"category"`
	Amount          string             `json:"amount"`
	Period          string             `json:"period"`
	StartDate       string             `json:"start_date"`
	EndDate         string             `json:"end_date"`
	AlertThresholds AlertThresholdsDTO `json:"alert_thresholds"`
	Spent           string             `json:"spent"`
	Remaining       string             `json:"remaining"`
	Percentage      int64              `json:"percentage"`
	Status          string             `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ToBudgetResponse converts a budget with status to a BudgetResponse DTO.
func ToBudgetResponse(b *entity.BudgetWithStatus) BudgetResponse {
	return BudgetResponse{
		ID:        b.Budget.ID.String(),
		UserID:    b.Budget.UserID.String(),
		Category:  string(b.Budget.Category),
		Amount:    b.Budget.Amount.StringFixed(2),
		Period:    string(b.Budget.Period),
		StartDate: b.Budget.StartDate.Format(entity.DateLayout),
		EndDate:   b.Budget.EndDate.Format(entity.DateLayout),
		AlertThresholds: AlertThresholdsDTO{
			Warning:  b.Budget.AlertThresholds.Warning,
			Critical: b.Budget.AlertThresholds.Critical,
		},
		Spent:      b.Status.Spent.StringFixed(2),
		Remaining:  b.Status.Remaining.StringFixed(2),
		Percentage: b.Status.Percentage,
		Status:     string(b.Status.Level),
		CreatedAt:  b.Budget.CreatedAt,
		UpdatedAt:  b.Budget.UpdatedAt,
	}
}

// ToBudgetResponses converts a list of budgets with status.
func ToBudgetResponses(budgets []entity.BudgetWithStatus) []BudgetResponse {
	out := make([]BudgetResponse, 0, len(budgets))
	for i := range budgets {
		out = append(out, ToBudgetResponse(&budgets[i]))
	}
	return out
}
