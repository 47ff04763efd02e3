// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/expense-tracker/backend/internal/infra/metrics"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine            *gin.Engine
	healthController  *controller.HealthController
	authController    *controller.AuthController
	expenseController *controller.ExpenseController
	budgetController  *controller.BudgetController
	aiController      *controller.AIController
	ocrController     *controller.OCRController
	loginRateLimiter  *middleware.RateLimiter
	aiRateLimiter     *middleware.RateLimiter
	authMiddleware    *middleware.AuthMiddleware
	metrics           *metrics.Metrics
}

// NewRouter creates a new router instance with all dependencies.
// Rate limiters and metrics may be nil.
func NewRouter(
	healthController *controller.HealthController,
	authController *controller.AuthController,
	expenseController *controller.ExpenseController,
	budgetController *controller.BudgetController,
	aiController *controller.AIController,
	ocrController *controller.OCRController,
	loginRateLimiter *middleware.RateLimiter,
	aiRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
	m *metrics.Metrics,
) *Router {
	return &Router{
		healthController:  healthController,
		authController:    authController,
		expenseController: expenseController,
		budgetController:  budgetController,
		aiController:      aiController,
		ocrController:     ocrController,
		loginRateLimiter:  loginRateLimiter,
		aiRateLimiter:     aiRateLimiter,
		authMiddleware:    authMiddleware,
		metrics:           m,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	switch environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	if environment != "test" {
		r.engine.Use(gin.Logger())
	}
	r.engine.MaxMultipartMemory = controller.MaxImageSize + 1<<20

	if r.metrics != nil {
		r.engine.Use(r.metrics.Middleware())
		r.engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", r.authController.Register)
		auth.POST("/login", append(limit(r.loginRateLimiter), r.authController.Login)...)
	}

	protected := v1.Group("")
	protected.Use(r.authMiddleware.Authenticate())

	expenses := protected.Group("/expenses")
	{
		expenses.GET("", r.expenseController.List)
		expenses.POST("", r.expenseController.Create)
		expenses.GET("/analytics", r.expenseController.Analytics)
		expenses.GET("/:id", r.expenseController.Get)
		expenses.PUT("/:id", r.expenseController.Update)
		expenses.DELETE("/:id", r.expenseController.Delete)
	}

	budgets := protected.Group("/budgets")
	{
		budgets.GET("", r.budgetController.List)
		budgets.POST("", r.budgetController.Create)
		budgets.GET("/:id", r.budgetController.Get)
		budgets.PUT("/:id", r.budgetController.Update)
		budgets.DELETE("/:id", r.budgetController.Delete)
	}

	ai := protected.Group("/ai", limit(r.aiRateLimiter)...)
	{
		ai.POST("/categorize", r.aiController.Categorize)
		ai.GET("/advice", r.aiController.Advice)
		ai.GET("/prediction", r.aiController.Prediction)
		ai.POST("/note", r.aiController.Note)
		ai.POST("/parse-voice", r.aiController.ParseVoice)
		ai.POST("/parse-query", r.aiController.ParseQuery)
	}

	ocr := protected.Group("/ocr", limit(r.aiRateLimiter)...)
	{
		ocr.POST("/extract", r.ocrController.Extract)
		ocr.POST("/create-expense", r.ocrController.CreateExpense)
	}
}

func limit(rl *middleware.RateLimiter) []gin.HandlerFunc {
	if rl == nil {
		return nil
	}
	return []gin.HandlerFunc{rl.Middleware()}
}
