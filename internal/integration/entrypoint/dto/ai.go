package dto

import (
	"github.com/expense-tracker/backend/internal/application/usecase/assistant"
	"github.com/expense-tracker/backend/internal/domain/entity"
)

// CategorizeRequest represents the request body for expense categorization.
type CategorizeRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Merchant string `json:"merchant,omitempty" binding:"omitempty,max=200"`
}

// NoteRequest represents the request body for note generation.
type NoteRequest struct {
	Title    string   `json:"title" binding:"required,max=200"`
	Amount   *float64 `json:"amount" binding:"required"`
	Category string   `json:"category" binding:"required"`
}

// VoiceRequest represents the request body for parsing transcribed speech.
type VoiceRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

// QueryRequest represents the request body for parsing a natural-language search.
type QueryRequest struct {
	Query string `json:"query" binding:"required,max=500"`
}

// AIMeta tells whether a value came from the model or is a fallback, and why.
type AIMeta struct {
	Source string `json:"source"`
	Reason string `json:"reason,omitempty"`
}

// CategorizeResponse represents a suggested category.
type CategorizeResponse struct {
	Category string `json:"category"`
	AIMeta
}

// AdviceResponse represents budget advice.
type AdviceResponse struct {
	Advice []string `json:"advice"`
	AIMeta
}

// PredictionResponse represents a spending forecast for next month.
type PredictionResponse struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	AIMeta
}

// NoteResponse represents a generated note.
type NoteResponse struct {
	Note string `json:"note"`
	AIMeta
}

// CandidateResponse represents an expense extracted from an image or speech.
type CandidateResponse struct {
	Title      string  `json:"title"`
	Amount     string  `json:"amount"`
	Category   string  `json:"category"`
	Date       string  `json:"date"`
	Merchant   string  `json:"merchant,omitempty"`
	Confidence float64 `json:"confidence"`
}

// VoiceResponse represents parsed speech. Expense is null when the speech was not understood.
type VoiceResponse struct {
	Expense *CandidateResponse `json:"expense"`
	AIMeta
}

// FiltersResponse represents the search filters recognized in a query. Unrecognized fields are omitted.
type FiltersResponse struct {
	Category  *string `json:"category,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	MinAmount *string `json:"min_amount,omitempty"`
	MaxAmount *string `json:"max_amount,omitempty"`
	Search    *string `json:"search,omitempty"`
	SortBy    *string `json:"sort_by,omitempty"`
	SortOrder *string `json:"sort_order,omitempty"`
}

// QueryResponse represents the filters parsed from a natural-language query.
type QueryResponse struct {
	Filters FiltersResponse `json:"filters"`
	AIMeta
}

// ToAIMeta converts a normalizer source and reason.
func ToAIMeta(source assistant.Source, reason assistant.FallbackReason) AIMeta {
	return AIMeta{Source: string(source), Reason: string(reason)}
}

// ToCandidateResponse converts an extracted expense candidate.
func ToCandidateResponse(c entity.ExpenseCandidate) CandidateResponse {
	return CandidateResponse{
		Title:      c.Title,
		Amount:     c.Amount.StringFixed(2),
		Category:   string(c.Category),
		Date:       c.Date.Format(entity.DateLayout),
		Merchant:   c.Merchant,
		Confidence: c.Confidence,
	}
}

// ToFiltersResponse converts parsed search filters, keeping only the recognized fields.
func ToFiltersResponse(f entity.SearchFilters) FiltersResponse {
	var resp FiltersResponse
	if f.Category != nil {
		resp.Category = strPtr(string(*f.Category))
	}
	if f.StartDate != nil {
		resp.StartDate = strPtr(f.StartDate.Format(entity.DateLayout))
	}
	if f.EndDate != nil {
		resp.EndDate = strPtr(f.EndDate.Format(entity.DateLayout))
	}
	if f.MinAmount != nil {
		resp.MinAmount = strPtr(f.MinAmount.String())
	}
	if f.MaxAmount != nil {
		resp.MaxAmount = strPtr(f.MaxAmount.String())
	}
	if f.Search != nil {
		resp.Search = strPtr(*f.Search)
	}
	if f.SortBy != nil {
		resp.SortBy = strPtr(string(*f.SortBy))
	}
	if f.SortOrder != nil {
		resp.SortOrder = strPtr(string(*f.SortOrder))
	}
	return resp
}

func strPtr(s string) *string {
	return &s
}
