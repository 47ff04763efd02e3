// Package error defines domain-specific errors for the Expense Tracker application.
package error

import "errors"

// Expense domain errors.
var (
	// ErrExpenseNotFound is returned when an expense does not exist or is not owned by the caller.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrInvalidExpenseTitle is returned when the title is empty or too long.
	ErrInvalidExpenseTitle = errors.New("invalid expense title")

	// ErrInvalidExpenseAmount is returned when the amount is negative.
	ErrInvalidExpenseAmount = errors.New("invalid expense amount")

	// ErrInvalidCategory is returned when a category is not one of the enumerated values.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidExpenseDate is returned when a date cannot be parsed.
	ErrInvalidExpenseDate = errors.New("invalid expense date")

	// ErrInvalidExpenseNotes is returned when notes exceed the allowed length.
	ErrInvalidExpenseNotes = errors.New("invalid expense notes")

	// ErrInvalidExpenseFilter is returned when list filters are inconsistent.
	ErrInvalidExpenseFilter = errors.New("invalid expense filter")
)

// ExpenseErrorCode defines error codes for expense errors.
// Format: EXP-XXYYYY where XX is category and YYYY is specific error.
type ExpenseErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidExpenseTitle  ExpenseErrorCode = "EXP-010001"
	ErrCodeInvalidExpenseAmount ExpenseErrorCode = "EXP-010002"
	ErrCodeInvalidCategory      ExpenseErrorCode = "EXP-010003"
	ErrCodeInvalidExpenseDate   ExpenseErrorCode = "EXP-010004"
	ErrCodeInvalidExpenseNotes  ExpenseErrorCode = "EXP-010005"
	ErrCodeInvalidExpenseFilter ExpenseErrorCode = "EXP-010006"
	ErrCodeMissingExpenseFields ExpenseErrorCode = "EXP-010007"

	// Lookup errors (02XXXX)
	ErrCodeExpenseNotFound ExpenseErrorCode = "EXP-020001"
)

// ExpenseError represents an expense error with code and message.
type ExpenseError struct {
	Code    ExpenseErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ExpenseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ExpenseError) Unwrap() error {
	return e.Err
}

// NewExpenseError creates a new ExpenseError with the given code and message.
func NewExpenseError(code ExpenseErrorCode, message string, err error) *ExpenseError {
	return &ExpenseError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
