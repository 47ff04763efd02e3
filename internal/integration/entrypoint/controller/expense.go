package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/usecase/analytics"
	"github.com/expense-tracker/backend/internal/application/usecase/expense"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/dto"
)

// ExpenseController handles expense endpoints.
type ExpenseController struct {
	createUseCase    *expense.CreateExpenseUseCase
	getUseCase       *expense.GetExpenseUseCase
	listUseCase      *expense.ListExpensesUseCase
	updateUseCase    *expense.UpdateExpenseUseCase
	deleteUseCase    *expense.DeleteExpenseUseCase
	analyticsUseCase *analytics.GetAnalyticsUseCase
}

// NewExpenseController creates a new expense controller instance.
func NewExpenseController(
	createUseCase *expense.CreateExpenseUseCase,
	getUseCase *expense.GetExpenseUseCase,
	listUseCase *expense.ListExpensesUseCase,
	updateUseCase *expense.UpdateExpenseUseCase,
	deleteUseCase *expense.DeleteExpenseUseCase,
	analyticsUseCase *analytics.GetAnalyticsUseCase,
) *ExpenseController {
	return &ExpenseController{
		createUseCase:    createUseCase,
		getUseCase:       getUseCase,
		listUseCase:      listUseCase,
		updateUseCase:    updateUseCase,
		deleteUseCase:    deleteUseCase,
		analyticsUseCase: analyticsUseCase,
	}
}

// List handles GET /expenses requests.
func (c *ExpenseController) List(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	input := expense.ListExpensesInput{
		UserID:    userID,
		Category:  ctx.Query("category"),
		StartDate: ctx.Query("startDate"),
		EndDate:   ctx.Query("endDate"),
		Search:    ctx.Query("search"),
		MinAmount: ctx.Query("minAmount"),
		MaxAmount: ctx.Query("maxAmount"),
		SortBy:    ctx.Query("sortBy"),
		SortOrder: ctx.Query("sortOrder"),
	}

	if pageStr := ctx.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			c.respondInvalidFilter(ctx, "page must be a positive integer")
			return
		}
		input.Page = page
	}
	if limitStr := ctx.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			c.respondInvalidFilter(ctx, "limit must be a positive integer")
			return
		}
		input.Limit = limit
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleExpenseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ExpenseListResponse{
		Expenses:    dto.ToExpenseResponses(output.Expenses),
		Total:       output.Total,
		TotalPages:  output.TotalPages,
		CurrentPage: output.Page,
	})
}

// Create handles POST /expenses requests.
func (c *ExpenseController) Create(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	fields, ok := c.bindExpenseFields(ctx)
	if !ok {
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), expense.CreateExpenseInput{
		UserID:        userID,
		ExpenseFields: fields,
	})
	if err != nil {
		c.handleExpenseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToExpenseResponse(output.Expense))
}

// Get handles GET /expenses/:id requests.
func (c *ExpenseController) Get(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	expenseID, ok := c.expenseIDParam(ctx)
	if !ok {
		return
	}

	output, err := c.getUseCase.Execute(ctx.Request.Context(), expense.GetExpenseInput{
		ExpenseID: expenseID,
		UserID:    userID,
	})
	if err != nil {
		c.handleExpenseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToExpenseResponse(output.Expense))
}

// Update handles PUT /expenses/:id requests.
func (c *ExpenseController) Update(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	expenseID, ok := c.expenseIDParam(ctx)
	if !ok {
		return
	}

	fields, ok := c.bindExpenseFields(ctx)
	if !ok {
		return
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), expense.UpdateExpenseInput{
		ExpenseID:     expenseID,
		UserID:        userID,
		ExpenseFields: fields,
	})
	if err != nil {
		c.handleExpenseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToExpenseResponse(output.Expense))
}

// Delete handles DELETE /expenses/:id requests.
func (c *ExpenseController) Delete(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	expenseID, ok := c.expenseIDParam(ctx)
	if !ok {
		return
	}

	err := c.deleteUseCase.Execute(ctx.Request.Context(), expense.DeleteExpenseInput{
		ExpenseID: expenseID,
		UserID:    userID,
	})
	if err != nil {
		c.handleExpenseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Expense deleted successfully"})
}

// Analytics handles GET /expenses/analytics requests.
func (c *ExpenseController) Analytics(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	output, err := c.analyticsUseCase.Execute(ctx.Request.Context(), analytics.GetAnalyticsInput{UserID: userID})
	if err != nil {
		respondInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAnalyticsResponse(output.Snapshot))
}

func (c *ExpenseController) bindExpenseFields(ctx *gin.Context) (expense.ExpenseFields, bool) {
	var req dto.ExpenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingExpenseFields),
			Details: err.Error(),
		})
		return expense.ExpenseFields{}, false
	}

	date, err := parseDate(req.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "date must be in YYYY-MM-DD format",
			Code:  string(domainerror.ErrCodeInvalidExpenseDate),
		})
		return expense.ExpenseFields{}, false
	}

	return expense.ExpenseFields{
		Title:    req.Title,
		Amount:   decimal.NewFromFloat(*req.Amount),
		Category: req.Category,
		Date:     date,
		Notes:    req.Notes,
	}, true
}

func (c *ExpenseController) expenseIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	expenseID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		// Unknown identifiers are reported like missing expenses.
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "expense not found",
			Code:  string(domainerror.ErrCodeExpenseNotFound),
		})
		return uuid.Nil, false
	}
	return expenseID, true
}

func (c *ExpenseController) respondInvalidFilter(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: message,
		Code:  string(domainerror.ErrCodeInvalidExpenseFilter),
	})
}

// handleExpenseError handles expense errors and returns appropriate HTTP responses.
func (c *ExpenseController) handleExpenseError(ctx *gin.Context, err error) {
	var expErr *domainerror.ExpenseError
	if errors.As(err, &expErr) {
		ctx.JSON(c.getStatusCodeForExpenseError(expErr.Code), dto.ErrorResponse{
			Error: expErr.Message,
			Code:  string(expErr.Code),
		})
		return
	}

	respondInternalError(ctx, err)
}

// getStatusCodeForExpenseError maps expense error codes to HTTP status codes.
func (c *ExpenseController) getStatusCodeForExpenseError(code domainerror.ExpenseErrorCode) int {
	switch code {
	case domainerror.ErrCodeInvalidExpenseTitle,
		domainerror.ErrCodeInvalidExpenseAmount,
		domainerror.ErrCodeInvalidCategory,
		domainerror.ErrCodeInvalidExpenseDate,
		domainerror.ErrCodeInvalidExpenseNotes,
		domainerror.ErrCodeInvalidExpenseFilter,
		domainerror.ErrCodeMissingExpenseFields:
		return http.StatusBadRequest
	case domainerror.ErrCodeExpenseNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
