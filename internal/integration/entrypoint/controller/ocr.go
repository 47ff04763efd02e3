package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/expense-tracker/backend/internal/application/usecase/assistant"
	"github.com/expense-tracker/backend/internal/application/usecase/expense"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/dto"
)

// MaxImageSize is the largest accepted receipt image.
const MaxImageSize = 5 << 20

const imageFormField = "image"

// OCRController handles receipt image endpoints.
type OCRController struct {
	normalizer    *assistant.Normalizer
	createUseCase *expense.CreateExpenseFromImageUseCase
}

// NewOCRController creates a new OCR controller instance.
func NewOCRController(normalizer *assistant.Normalizer, createUseCase *expense.CreateExpenseFromImageUseCase) *OCRController {
	return &OCRController{
		normalizer:    normalizer,
		createUseCase: createUseCase,
	}
}

// Extract handles POST /ocr/extract requests. The extracted data is returned for preview only.
func (c *OCRController) Extract(ctx *gin.Context) {
	if _, ok := requireUserID(ctx); !ok {
		return
	}

	image, mimeType, err := readImage(ctx)
	if err != nil {
		respondAIError(ctx, err)
		return
	}

	result := c.normalizer.ExtractFromImage(ctx.Request.Context(), image, mimeType)

	ctx.JSON(http.StatusOK, dto.ExtractResponse{
		Data:   dto.ToCandidateResponse(result.Value),
		AIMeta: dto.ToAIMeta(result.Source, result.Reason),
	})
}

// CreateExpense handles POST /ocr/create-expense requests.
func (c *OCRController) CreateExpense(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	image, mimeType, err := readImage(ctx)
	if err != nil {
		respondAIError(ctx, err)
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), expense.CreateExpenseFromImageInput{
		UserID:   userID,
		Image:    image,
		MIMEType: mimeType,
	})
	if err != nil {
		var expErr *domainerror.ExpenseError
		if errors.As(err, &expErr) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: expErr.Message,
				Code:  string(expErr.Code),
			})
			return
		}
		respondAIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.CreateFromImageResponse{
		Expense:       dto.ToExpenseResponse(output.Expense),
		ExtractedData: dto.ToCandidateResponse(output.Candidate),
		AIMeta:        dto.ToAIMeta(output.Source, output.Reason),
	})
}

// readImage loads the uploaded image and checks its size and content type.
func readImage(ctx *gin.Context) ([]byte, string, error) {
	file, err := ctx.FormFile(imageFormField)
	if err != nil {
		return nil, "", invalidImage("No image file provided", err)
	}
	if file.Size > MaxImageSize {
		return nil, "", invalidImage("Image must be at most 5MB", nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open uploaded image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read uploaded image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", invalidImage("Image is empty", nil)
	}
	if len(data) > MaxImageSize {
		return nil, "", invalidImage("Image must be at most 5MB", nil)
	}

	mimeType := mimetype.Detect(data).String()
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", invalidImage("Only image files are allowed", nil)
	}
	return data, mimeType, nil
}

func invalidImage(message string, err error) error {
	if err == nil {
		err = domainerror.ErrInvalidImage
	}
	return domainerror.NewAIError(domainerror.ErrCodeInvalidImage, message, err)
}
