// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the fixed set of spending categories shared by expenses and budgets.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryRent          Category = "Rent"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealthcare    Category = "Healthcare"
	CategoryShopping      Category = "Shopping"
	CategoryUtilities     Category = "Utilities"
	CategoryOther         Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTravel,
	CategoryRent,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryShopping,
	CategoryUtilities,
	CategoryOther,
}

// IsValid reports whether c is one of the enumerated categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory returns the category matching s exactly, or CategoryOther and false.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	if c.IsValid() {
		return c, true
	}
	return CategoryOther, false
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Expense represents a single recorded expense.
type Expense struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Amount    decimal.Decimal
	Category  Category
	Date      time.Time // calendar date at midnight UTC
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewExpense creates a new Expense entity.
func NewExpense(userID uuid.UUID, title string, amount decimal.Decimal, category Category, date time.Time, notes string) *Expense {
	now := time.Now().UTC()

	return &Expense{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Amount:    amount,
		Category:  category,
		Date:      CalendarDate(date),
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CalendarDate truncates t to its calendar date, expressed at midnight UTC.
// The wall-clock year, month and day of t are preserved.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseCalendarDate parses a YYYY-MM-DD string into a calendar date.
func ParseCalendarDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
