// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/expense-tracker/backend/config"
	"github.com/expense-tracker/backend/internal/infra/dependency"
	"github.com/expense-tracker/backend/internal/infra/metrics"
	"github.com/expense-tracker/backend/internal/integration/email"
	"github.com/expense-tracker/backend/internal/integration/persistence/model"
	"github.com/expense-tracker/backend/test/integration/mock"
)

// testContext holds the state of one scenario.
type testContext struct {
	uri         string
	headers     map[string]string
	client      *http.Client
	response    *response
	accessToken string
	expenseID   uuid.UUID
	budgetID    uuid.UUID
}

type response struct {
	status int
	body   any
}

// suite holds the resources shared by every scenario.
type suite struct {
	port     int
	db       *mock.Db
	redis    *mock.Redis
	timeMock *mock.Time
	gateway  *mock.Gateway
	emailAPI *mock.ApiMock
}

var (
	shared     *suite
	sharedOnce sync.Once
	serverOnce sync.Once
)

func getSuite() *suite {
	sharedOnce.Do(func() {
		emailAPI := mock.NewApiServer()
		emailAPI.Start()

		shared = &suite{
			port: findAvailablePort(),
			db: mock.NewDb(map[string]any{
				"users":       &model.UserModel{},
				"expenses":    &model.ExpenseModel{},
				"budgets":     &model.BudgetModel{},
				"email_queue": &model.EmailQueueModel{},
			}),
			redis:    mock.NewRedis(),
			timeMock: mock.NewTime(),
			gateway:  mock.NewGateway(),
			emailAPI: emailAPI,
		}
	})
	return shared
}

func findAvailablePort() int {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		panic(err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

// InitializeTestSuite configures the environment the server is built from.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
		s := getSuite()

		env := map[string]string{
			"ENV":                        "test",
			"SERVER_PORT":                strconv.Itoa(s.port),
			"JWT_SECRET":                 "test-jwt-secret-key-for-testing-purposes",
			"APP_TIMEZONE":               "UTC",
			"LOGIN_RATE_LIMIT":           "3",
			"AI_RATE_LIMIT":              "50",
			"RESEND_API_KEY":             "re_test",
			"RESEND_BASE_URL":            s.emailAPI.GetUrl(),
			"EMAIL_WORKER_POLL_INTERVAL": "100ms",
		}
		for key, value := range env {
			_ = os.Setenv(key, value)
		}
	})

	ctx.AfterSuite(func() {
		if shared != nil {
			shared.emailAPI.Close()
		}
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	s := getSuite()
	test := &testContext{
		uri:    fmt.Sprintf("http://localhost:%d", s.port),
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		test.before(s)
		return ctx, nil
	})

	// Background steps
	ctx.Step(`^the API server is running$`, test.theAPIServerIsRunning)
	ctx.Step(`^today is "([^"]*)"$`, test.todayIs)

	// User setup steps
	ctx.Step(`^a user exists with email "([^"]*)" and password "([^"]*)"$`, test.aUserExistsWithEmailAndPassword)
	ctx.Step(`^I am logged in as "([^"]*)" with password "([^"]*)"$`, test.iAmLoggedInAs)
	ctx.Step(`^the user "([^"]*)" has disabled budget alerts$`, test.theUserHasDisabledBudgetAlerts)

	// Data setup steps
	ctx.Step(`^the following expenses exist:$`, test.theFollowingExpensesExist)

	// External service steps
	ctx.Step(`^the AI model answers "([^"]*)" with:$`, test.theAIModelAnswersWith)
	ctx.Step(`^the AI model is unavailable$`, test.theAIModelIsUnavailable)

	// Header steps
	ctx.Step(`^the header is empty$`, test.theHeaderIsEmpty)
	ctx.Step(`^the header contains the key "([^"]*)" with "([^"]*)"$`, test.theHeaderContainsTheKeyWith)

	// Request steps
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)
	ctx.Step(`^I upload a "([^"]*)" file to "([^"]*)"$`, test.iUploadAFileTo)

	// Response assertion steps
	ctx.Step(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Step(`^the response should be JSON$`, test.theResponseShouldBeJSON)
	ctx.Step(`^the response should contain "([^"]*)"$`, test.theResponseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)
	ctx.Step(`^the response field "([^"]*)" should be null$`, test.theResponseFieldShouldBeNull)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items?$`, test.theResponseFieldShouldHaveItems)

	// Database assertion steps
	ctx.Step(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Step(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)

	// E-mail assertion steps
	ctx.Step(`^the email API should receive (\d+) emails?$`, test.theEmailAPIShouldReceiveEmails)
	ctx.Step(`^the last email subject should be "([^"]*)"$`, test.theLastEmailSubjectShouldBe)
}

func (t *testContext) before(s *suite) {
	t.headers = make(map[string]string)
	t.response = nil
	t.accessToken = ""
	t.expenseID = uuid.Nil
	t.budgetID = uuid.Nil

	s.gateway.Reset()
	s.emailAPI.Reset()
	s.redis.Clear()
	s.timeMock.SetCurrentTime(time.Now())
	if err := s.db.ClearDB(); err != nil {
		panic(err)
	}
}

// startServer builds the application the way cmd/api does, against the suite mocks.
func startServer(s *suite) error {
	var startErr error

	serverOnce.Do(func() {
		cfg := config.Load()

		injector, err := dependency.NewInjector(cfg, dependency.Dependencies{
			DB:          s.db.DbConn,
			Redis:       s.redis.Client,
			Gateway:     s.gateway,
			EmailSender: mustResendClient(cfg),
			Metrics:     metrics.New(),
			Clock:       s.timeMock,
		})
		if err != nil {
			startErr = err
			return
		}

		go injector.EmailWorker.Start(context.Background())

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", s.port),
			Handler: injector.Router.Setup(cfg.Server.Environment),
		}
		go func() {
			_ = server.ListenAndServe()
		}()
	})
	if startErr != nil {
		return startErr
	}

	// Wait for server to be ready
	uri := fmt.Sprintf("http://localhost:%d/health", s.port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(uri)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server did not become healthy on port %d", s.port)
}

func mustResendClient(cfg *config.Config) *email.ResendClient {
	client, err := email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.ResendBaseURL, cfg.Email.FromName, cfg.Email.FromEmail)
	if err != nil {
		panic(err)
	}
	return client
}
