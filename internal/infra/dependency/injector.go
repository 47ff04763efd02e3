// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/expense-tracker/backend/config"
	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/application/usecase/analytics"
	"github.com/expense-tracker/backend/internal/application/usecase/assistant"
	"github.com/expense-tracker/backend/internal/application/usecase/auth"
	"github.com/expense-tracker/backend/internal/application/usecase/budget"
	"github.com/expense-tracker/backend/internal/application/usecase/expense"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/infra/cache"
	"github.com/expense-tracker/backend/internal/infra/metrics"
	"github.com/expense-tracker/backend/internal/infra/server/router"
	"github.com/expense-tracker/backend/internal/integration/adapters"
	"github.com/expense-tracker/backend/internal/integration/email"
	"github.com/expense-tracker/backend/internal/integration/email/templates"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/middleware"
	"github.com/expense-tracker/backend/internal/integration/persistence"
)

// Dependencies are the externally created resources the application is built on.
type Dependencies struct {
	DB *gorm.DB
	// Redis is optional. Without it rate limits and alert de-duplication are process-local.
	Redis *redis.Client
	// Gateway is the generative model client.
	Gateway adapter.AIGateway
	// EmailSender delivers queued e-mails. Nil disables budget alert and welcome e-mails.
	EmailSender adapter.EmailSender
	Metrics     *metrics.Metrics
	Clock       adapter.Clock
}

// Injector holds all application dependencies.
type Injector struct {
	Config       *config.Config
	DB           *gorm.DB
	Router       *router.Router
	EmailWorker  *email.Worker
	RetentionJob *email.RetentionJob
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, deps Dependencies) (*Injector, error) {
	clock := deps.Clock
	if clock == nil {
		clock = adapter.SystemClock{}
	}
	loc, err := cfg.Analytics.Location()
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepo := persistence.NewUserRepository(deps.DB)
	expenseRepo := persistence.NewExpenseRepository(deps.DB)
	budgetRepo := persistence.NewBudgetRepository(deps.DB)
	emailQueueRepo := persistence.NewEmailQueueRepository(deps.DB)

	// Shared stores
	var counter cache.WindowCounter
	var tracker adapter.AlertTracker
	if deps.Redis != nil {
		counter = cache.NewRedisCounter(deps.Redis)
		tracker = cache.NewRedisAlertTracker(deps.Redis)
	} else {
		counter = cache.NewMemoryCounter()
		tracker = cache.NewMemoryAlertTracker()
	}

	// E-mail
	var emailService adapter.EmailService
	var worker *email.Worker
	var retention *email.RetentionJob
	if deps.EmailSender != nil {
		renderer, err := templates.NewRenderer()
		if err != nil {
			return nil, fmt.Errorf("failed to load email templates: %w", err)
		}
		emailService = email.NewService(emailQueueRepo, cfg.Email.AppBaseURL)
		worker = email.NewWorker(emailQueueRepo, deps.EmailSender, renderer, clock, email.WorkerConfig{
			PollInterval: cfg.Email.PollInterval,
			BatchSize:    cfg.Email.BatchSize,
		})
		retention, err = email.NewRetentionJob(emailQueueRepo, clock, cfg.Email.RetentionDays, cfg.Email.CleanupSchedule)
		if err != nil {
			return nil, config.NewConfigError("EMAIL_CLEANUP_SCHEDULE", "invalid cron schedule", err)
		}
	}

	// Services
	passwordService := adapters.NewPasswordService()
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	var observer assistant.OutcomeObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
	}
	normalizer := assistant.NewNormalizer(deps.Gateway, clock, loc, observer)

	var notifier budget.AlertNotifier
	if emailService != nil {
		notifier = budget.NewBudgetAlertNotifier(userRepo, emailService, tracker, clock)
	}

	// Use cases
	registerUseCase := auth.NewRegisterUserUseCase(userRepo, passwordService, tokenService, emailService)
	loginUseCase := auth.NewLoginUserUseCase(userRepo, passwordService, tokenService)

	createExpenseUseCase := expense.NewCreateExpenseUseCase(expenseRepo)
	getExpenseUseCase := expense.NewGetExpenseUseCase(expenseRepo)
	listExpensesUseCase := expense.NewListExpensesUseCase(expenseRepo)
	updateExpenseUseCase := expense.NewUpdateExpenseUseCase(expenseRepo)
	deleteExpenseUseCase := expense.NewDeleteExpenseUseCase(expenseRepo)
	createFromImageUseCase := expense.NewCreateExpenseFromImageUseCase(expenseRepo, normalizer)
	analyticsUseCase := analytics.NewGetAnalyticsUseCase(expenseRepo, clock, loc)

	createBudgetUseCase := budget.NewCreateBudgetUseCase(budgetRepo)
	getBudgetUseCase := budget.NewGetBudgetUseCase(budgetRepo, expenseRepo)
	listBudgetsUseCase := budget.NewListBudgetsUseCase(budgetRepo, expenseRepo, notifier, cfg.Budget.StatusConcurrency)
	updateBudgetUseCase := budget.NewUpdateBudgetUseCase(budgetRepo, expenseRepo)
	deleteBudgetUseCase := budget.NewDeleteBudgetUseCase(budgetRepo)

	adviceUseCase := assistant.NewGetAdviceUseCase(expenseRepo, budgetRepo, normalizer)
	predictUseCase := assistant.NewPredictSpendingUseCase(expenseRepo, normalizer)

	// Controllers
	healthController := controller.NewHealthController(dbHealthChecker(deps.DB), redisHealthChecker(deps.Redis))
	authController := controller.NewAuthController(registerUseCase, loginUseCase)
	expenseController := controller.NewExpenseController(
		createExpenseUseCase,
		getExpenseUseCase,
		listExpensesUseCase,
		updateExpenseUseCase,
		deleteExpenseUseCase,
		analyticsUseCase,
	)
	budgetController := controller.NewBudgetController(
		createBudgetUseCase,
		getBudgetUseCase,
		listBudgetsUseCase,
		updateBudgetUseCase,
		deleteBudgetUseCase,
	)
	aiController := controller.NewAIController(normalizer, adviceUseCase, predictUseCase)
	ocrController := controller.NewOCRController(normalizer, createFromImageUseCase)

	// Middleware
	loginRateLimiter := middleware.NewRateLimiter(
		counter, "login", cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow,
		middleware.KeyByIP, string(domainerror.ErrCodeRateLimited),
	)
	aiRateLimiter := middleware.NewRateLimiter(
		counter, "ai", cfg.RateLimit.AIRequests, cfg.RateLimit.AIWindow,
		middleware.KeyByUser, string(domainerror.ErrCodeAIRateLimited),
	)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r := router.NewRouter(
		healthController,
		authController,
		expenseController,
		budgetController,
		aiController,
		ocrController,
		loginRateLimiter,
		aiRateLimiter,
		authMiddleware,
		deps.Metrics,
	)

	return &Injector{
		Config:       cfg,
		DB:           deps.DB,
		Router:       r,
		EmailWorker:  worker,
		RetentionJob: retention,
	}, nil
}

func dbHealthChecker(db *gorm.DB) controller.HealthChecker {
	return func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}
}

func redisHealthChecker(client *redis.Client) controller.HealthChecker {
	if client == nil {
		return nil
	}
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Warn("Redis health check failed", "error", err)
			return false
		}
		return true
	}
}
