package error

import "errors"

// Budget domain errors.
var (
	// ErrBudgetNotFound is returned when a budget does not exist or is not owned by the caller.
	ErrBudgetNotFound = errors.New("budget not found")

	// ErrInvalidBudgetAmount is returned when the amount is zero or negative.
	ErrInvalidBudgetAmount = errors.New("invalid budget amount")

	// ErrInvalidBudgetPeriod is returned when the period is not monthly or weekly.
	ErrInvalidBudgetPeriod = errors.New("invalid budget period")

	// ErrInvalidBudgetDateRange is returned when the end date precedes the start date.
	ErrInvalidBudgetDateRange = errors.New("invalid budget date range")

	// ErrInvalidAlertThresholds is returned when warning is not below critical.
	ErrInvalidAlertThresholds = errors.New("invalid alert thresholds")
)

// BudgetErrorCode defines error codes for budget errors.
// Format: BDG-XXYYYY where XX is category and YYYY is specific error.
type BudgetErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidBudgetAmount    BudgetErrorCode = "BDG-010001"
	ErrCodeInvalidBudgetPeriod    BudgetErrorCode = "BDG-010002"
	ErrCodeInvalidBudgetDateRange BudgetErrorCode = "BDG-010003"
	ErrCodeInvalidAlertThresholds BudgetErrorCode = "BDG-010004"
	ErrCodeInvalidBudgetCategory  BudgetErrorCode = "BDG-010005"
	ErrCodeMissingBudgetFields    BudgetErrorCode = "BDG-010006"

	// Lookup errors (02XXXX)
	ErrCodeBudgetNotFound BudgetErrorCode = "BDG-020001"
)

// BudgetError represents a budget error with code and message.
type BudgetError struct {
	Code    BudgetErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *BudgetError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *BudgetError) Unwrap() error {
	return e.Err
}

// NewBudgetError creates a new BudgetError with the given code and message.
func NewBudgetError(code BudgetErrorCode, message string, err error) *BudgetError {
	return &BudgetError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
