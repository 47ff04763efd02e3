package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Confidence bounds for AI-extracted candidates.
const (
	MinConfidence     = 0.1
	MaxConfidence     = 1.0
	DefaultConfidence = 0.5
)

// ExpenseCandidate is an expense proposed by an AI extraction. It is never stored directly.
type ExpenseCandidate struct {
	Title      string
	Amount     decimal.Decimal
	Category   Category
	Date       time.Time
	Merchant   string
	Confidence float64
}

// SortField names the fields an expense list can be ordered by.
type SortField string

const (
	SortByDate     SortField = "date"
	SortByAmount   SortField = "amount"
	SortByCategory SortField = "category"
	SortByTitle    SortField = "title"
)

// IsValid reports whether f is a supported sort field.
func (f SortField) IsValid() bool {
	switch f {
	case SortByDate, SortByAmount, SortByCategory, SortByTitle:
		return true
	}
	return false
}

// SortOrder is the direction of an expense list ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// IsValid reports whether o is asc or desc.
func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// SearchFilters is a sparse set of expense filters recognized in a natural-language query.
// A nil field means the filter was not recognized.
type SearchFilters struct {
	Category  *Category
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Search    *string
	SortBy    *SortField
	SortOrder *SortOrder
}

// IsEmpty reports whether no filter was recognized.
func (f SearchFilters) IsEmpty() bool {
	return f.Category == nil && f.StartDate == nil && f.EndDate == nil &&
		f.MinAmount == nil && f.MaxAmount == nil && f.Search == nil &&
		f.SortBy == nil && f.SortOrder == nil
}
