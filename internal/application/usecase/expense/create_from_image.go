package expense

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/application/usecase/assistant"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// AutoExtractedNote is stored when no merchant was recognized on the receipt.
const AutoExtractedNote = "Auto-extracted from image"

// CreateExpenseFromImageInput represents the input for creating an expense from a receipt image.
type CreateExpenseFromImageInput struct {
	UserID   uuid.UUID
	Image    []byte
	MIMEType string
}

// CreateExpenseFromImageOutput represents the output of creating an expense from an image.
type CreateExpenseFromImageOutput struct {
	Expense   *entity.Expense
	Candidate entity.ExpenseCandidate
	Source    assistant.Source
	Reason    assistant.FallbackReason
}

// CreateExpenseFromImageUseCase extracts a candidate from an image and stores it as an expense.
type CreateExpenseFromImageUseCase struct {
	normalizer *assistant.Normalizer
	create     *CreateExpenseUseCase
}

// NewCreateExpenseFromImageUseCase creates a new CreateExpenseFromImageUseCase instance.
func NewCreateExpenseFromImageUseCase(expenseRepo adapter.ExpenseRepository, normalizer *assistant.Normalizer) *CreateExpenseFromImageUseCase {
	return &CreateExpenseFromImageUseCase{
		normalizer: normalizer,
		create:     NewCreateExpenseUseCase(expenseRepo),
	}
}

// Execute performs the extraction and stores the result.
func (uc *CreateExpenseFromImageUseCase) Execute(ctx context.Context, input CreateExpenseFromImageInput) (*CreateExpenseFromImageOutput, error) {
	if len(input.Image) == 0 {
		return nil, domainerror.NewAIError(domainerror.ErrCodeInvalidImage, "image is required", domainerror.ErrInvalidImage)
	}

	result := uc.normalizer.ExtractFromImage(ctx, input.Image, input.MIMEType)
	candidate := result.Value
	candidate.Title = truncate(candidate.Title, MaxTitleLength)

	notes := AutoExtractedNote
	if candidate.Merchant != "" {
		notes = truncate("Merchant: "+candidate.Merchant, MaxNotesLength)
	}

	created, err := uc.create.Execute(ctx, CreateExpenseInput{
		UserID: input.UserID,
		ExpenseFields: ExpenseFields{
			Title:    candidate.Title,
			Amount:   candidate.Amount,
			Category: string(candidate.Category),
			Date:     candidate.Date,
			Notes:    notes,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store extracted expense: %w", err)
	}

	return &CreateExpenseFromImageOutput{
		Expense:   created.Expense,
		Candidate: candidate,
		Source:    result.Source,
		Reason:    result.Reason,
	}, nil
}

// truncate trims s and cuts it to at most limit runes.
func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:limit]))
}
