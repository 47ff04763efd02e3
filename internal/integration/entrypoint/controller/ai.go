package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/usecase/assistant"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/dto"
)

// AIController handles the AI-assisted endpoints.
// Model failures never surface as errors here; responses carry the fallback source instead.
type AIController struct {
	normalizer     *assistant.Normalizer
	adviceUseCase  *assistant.GetAdviceUseCase
	predictUseCase *assistant.PredictSpendingUseCase
}

// NewAIController creates a new AI controller instance.
func NewAIController(
	normalizer *assistant.Normalizer,
	adviceUseCase *assistant.GetAdviceUseCase,
	predictUseCase *assistant.PredictSpendingUseCase,
) *AIController {
	return &AIController{
		normalizer:     normalizer,
		adviceUseCase:  adviceUseCase,
		predictUseCase: predictUseCase,
	}
}

// Categorize handles POST /ai/categorize requests.
func (c *AIController) Categorize(ctx *gin.Context) {
	if _, ok := requireUserID(ctx); !ok {
		return
	}

	var req dto.CategorizeRequest
	if !bindAIRequest(ctx, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondAIError(ctx, domainerror.NewAIError(domainerror.ErrCodeInvalidAIInput, "title is required", domainerror.ErrInvalidAIInput))
		return
	}

	result := c.normalizer.Categorize(ctx.Request.Context(), req.Title, req.Merchant)

	ctx.JSON(http.StatusOK, dto.CategorizeResponse{
		Category: string(result.Value),
		AIMeta:   dto.ToAIMeta(result.Source, result.Reason),
	})
}

// Advice handles GET /ai/advice requests.
func (c *AIController) Advice(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	output, err := c.adviceUseCase.Execute(ctx.Request.Context(), assistant.GetAdviceInput{UserID: userID})
	if err != nil {
		respondInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.AdviceResponse{
		Advice: output.Tips,
		AIMeta: dto.ToAIMeta(output.Source, output.Reason),
	})
}

// Prediction handles GET /ai/prediction requests.
func (c *AIController) Prediction(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	output, err := c.predictUseCase.Execute(ctx.Request.Context(), assistant.PredictSpendingInput{UserID: userID})
	if err != nil {
		respondInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.PredictionResponse{
		Prediction: output.Prediction.Prediction.StringFixed(2),
		Confidence: output.Prediction.Confidence,
		AIMeta:     dto.ToAIMeta(output.Source, output.Reason),
	})
}

// Note handles POST /ai/note requests.
func (c *AIController) Note(ctx *gin.Context) {
	if _, ok := requireUserID(ctx); !ok {
		return
	}

	var req dto.NoteRequest
	if !bindAIRequest(ctx, &req) {
		return
	}
	category, valid := entity.ParseCategory(req.Category)
	if !valid || *req.Amount < 0 || strings.TrimSpace(req.Title) == "" {
		respondAIError(ctx, domainerror.NewAIError(
			domainerror.ErrCodeInvalidAIInput,
			"title, a non-negative amount and a supported category are required",
			domainerror.ErrInvalidAIInput,
		))
		return
	}

	result := c.normalizer.GenerateNote(ctx.Request.Context(), req.Title, decimal.NewFromFloat(*req.Amount).Round(2), category)

	ctx.JSON(http.StatusOK, dto.NoteResponse{
		Note:   result.Value,
		AIMeta: dto.ToAIMeta(result.Source, result.Reason),
	})
}

// ParseVoice handles POST /ai/parse-voice requests.
func (c *AIController) ParseVoice(ctx *gin.Context) {
	if _, ok := requireUserID(ctx); !ok {
		return
	}

	var req dto.VoiceRequest
	if !bindAIRequest(ctx, &req) {
		return
	}

	result := c.normalizer.ParseVoice(ctx.Request.Context(), req.Text)

	resp := dto.VoiceResponse{AIMeta: dto.ToAIMeta(result.Source, result.Reason)}
	if result.Value != nil {
		candidate := dto.ToCandidateResponse(*result.Value)
		resp.Expense = &candidate
	}
	ctx.JSON(http.StatusOK, resp)
}

// ParseQuery handles POST /ai/parse-query requests.
func (c *AIController) ParseQuery(ctx *gin.Context) {
	if _, ok := requireUserID(ctx); !ok {
		return
	}

	var req dto.QueryRequest
	if !bindAIRequest(ctx, &req) {
		return
	}

	result := c.normalizer.ParseQuery(ctx.Request.Context(), req.Query)

	ctx.JSON(http.StatusOK, dto.QueryResponse{
		Filters: dto.ToFiltersResponse(result.Value),
		AIMeta:  dto.ToAIMeta(result.Source, result.Reason),
	})
}

func bindAIRequest(ctx *gin.Context, req any) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeInvalidAIInput),
			Details: err.Error(),
		})
		return false
	}
	return true
}

// respondAIError maps AI request errors to HTTP responses.
func respondAIError(ctx *gin.Context, err error) {
	var aiErr *domainerror.AIError
	if errors.As(err, &aiErr) {
		ctx.JSON(getStatusCodeForAIError(aiErr.Code), dto.ErrorResponse{
			Error: aiErr.Message,
			Code:  string(aiErr.Code),
		})
		return
	}

	respondInternalError(ctx, err)
}

// getStatusCodeForAIError maps AI error codes to HTTP status codes.
func getStatusCodeForAIError(code domainerror.AIErrorCode) int {
	switch code {
	case domainerror.ErrCodeInvalidImage, domainerror.ErrCodeInvalidAIInput:
		return http.StatusBadRequest
	case domainerror.ErrCodeAIRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
