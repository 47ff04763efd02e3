// Package adapters provides implementations for external service integrations.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/expense-tracker/backend/config"
	"github.com/expense-tracker/backend/internal/application/adapter"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// GatewayObserver records every gateway call. kind is empty on success.
type GatewayObserver interface {
	ObserveGatewayCall(operation string, kind domainerror.AIFailureKind, elapsed time.Duration)
}

// callFunc performs a single request against the model and returns its raw text.
type callFunc func(ctx context.Context, req adapter.GenerateRequest) (string, error)

// GeminiGateway implements adapter.AIGateway using Google Gemini.
// Calls are throttled, guarded by a circuit breaker and bounded by a per-call timeout.
type GeminiGateway struct {
	client     *genai.Client
	call       callFunc
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[string]
	timeout    time.Duration
	maxRetries int
	observer   GatewayObserver
}

// NewGeminiGateway creates a gateway backed by a Gemini client.
// It returns a *config.ConfigError when no API key is configured.
func NewGeminiGateway(ctx context.Context, cfg config.AIConfig, observer GatewayObserver) (*GeminiGateway, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, config.NewConfigError("GEMINI_API_KEY", "gemini api key is required", config.ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	g := newGateway(nil, cfg, observer)
	g.client = client
	g.call = func(ctx context.Context, req adapter.GenerateRequest) (string, error) {
		return generateContent(ctx, client, cfg, req)
	}
	return g, nil
}

func newGateway(call callFunc, cfg config.AIConfig, observer GatewayObserver) *GeminiGateway {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "gemini",
		Timeout: cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("AI circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &GeminiGateway{
		call:       call,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    breaker,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		observer:   observer,
	}
}

// Close releases the underlying client.
func (g *GeminiGateway) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Generate sends the request and returns the raw text answer.
// Failures are returned as *domainerror.AIGatewayError.
func (g *GeminiGateway) Generate(ctx context.Context, req adapter.GenerateRequest) (string, error) {
	start := time.Now()
	text, err := g.generate(ctx, req)

	var kind domainerror.AIFailureKind
	if err != nil {
		kind = domainerror.AIFailureKindOf(err)
	}
	if g.observer != nil {
		g.observer.ObserveGatewayCall(req.Operation, kind, time.Since(start))
	}
	return text, err
}

func (g *GeminiGateway) generate(ctx context.Context, req adapter.GenerateRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	for attempt := 0; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", classifyError(ctx, err)
		}

		text, err := g.breaker.Execute(func() (string, error) {
			return g.call(ctx, req)
		})
		if err == nil {
			text = stripCodeFence(text)
			if text == "" {
				return "", domainerror.NewAIGatewayError(domainerror.AIFailureEmptyResponse, domainerror.ErrAIEmptyResponse)
			}
			return text, nil
		}

		gwErr := classifyError(ctx, err)
		if !gwErr.Kind.Retryable() || attempt >= g.maxRetries || ctx.Err() != nil {
			return "", gwErr
		}
		slog.Warn("Retrying AI gateway call", "operation", req.Operation, "attempt", attempt+1, "kind", gwErr.Kind)
	}
}

// classifyError maps a client error to a failure kind.
func classifyError(ctx context.Context, err error) *domainerror.AIGatewayError {
	var gwErr *domainerror.AIGatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domainerror.NewAIGatewayError(domainerror.AIFailureCircuitOpen, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domainerror.NewAIGatewayError(domainerror.AIFailureTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline"):
		return domainerror.NewAIGatewayError(domainerror.AIFailureTimeout, err)
	case containsAny(msg, "rate limit", "quota", "429", "resource exhausted", "resourceexhausted", "resource_exhausted"):
		return domainerror.NewAIGatewayError(domainerror.AIFailureQuota, err)
	case containsAny(msg, "401", "403", "api key", "unauthorized", "unauthenticated", "permissiondenied", "permission denied"):
		return domainerror.NewAIGatewayError(domainerror.AIFailureAuth, err)
	case containsAny(msg, "connection", "network", "dial", "timeout", "unavailable", "503"):
		return domainerror.NewAIGatewayError(domainerror.AIFailureNetwork, err)
	default:
		return domainerror.NewAIGatewayError(domainerror.AIFailureUnknown, err)
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// generateContent performs one GenerateContent call and joins the text parts of the first candidate.
func generateContent(ctx context.Context, client *genai.Client, cfg config.AIConfig, req adapter.GenerateRequest) (string, error) {
	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)

	parts := make([]genai.Part, 0, 2)
	if len(req.Image) > 0 {
		parts = append(parts, genai.Blob{MIMEType: req.MIMEType, Data: req.Image})
	}
	parts = append(parts, genai.Text(req.Prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// stripCodeFence removes a surrounding markdown code block.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
