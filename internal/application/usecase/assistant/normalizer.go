package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// Operation names used for gateway requests, logs and metrics.
const (
	OpExtractImage = "extract_image"
	OpCategorize   = "categorize"
	OpAdvice       = "advice"
	OpPredict      = "predict"
	OpNote         = "note"
	OpParseVoice   = "parse_voice"
	OpParseQuery   = "parse_query"
)

// Fallback values returned when the model output is unusable.
const (
	DefaultImageTitle  = "Payment"
	FailedImageTitle   = "Payment from Image"
	DefaultVoiceTitle  = "Voice Expense"
	absentJSONConf     = 0.3
	failedExtractConf  = 0.2
	defaultImageFormat = "image/jpeg"
)

// DefaultTips is the advice returned when the model gives none.
var DefaultTips = []string{
	"Track your spending regularly",
	"Set realistic budgets",
	"Review expenses monthly",
}

// Prediction is a best-effort forecast of next month's total spending.
type Prediction struct {
	Prediction decimal.Decimal
	Confidence float64
}

// OutcomeObserver records the outcome of every normalizer operation.
type OutcomeObserver interface {
	ObserveOutcome(operation string, source Source, reason FallbackReason)
}

// Normalizer turns raw generative model output into typed values with documented fallbacks.
// None of its operations return an error.
type Normalizer struct {
	gateway  adapter.AIGateway
	clock    adapter.Clock
	loc      *time.Location
	observer OutcomeObserver
}

// NewNormalizer creates a new Normalizer. observer may be nil.
func NewNormalizer(gateway adapter.AIGateway, clock adapter.Clock, loc *time.Location, observer OutcomeObserver) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{
		gateway:  gateway,
		clock:    clock,
		loc:      loc,
		observer: observer,
	}
}

// Today returns the current calendar date in the configured location.
func (n *Normalizer) Today() time.Time {
	return entity.CalendarDate(n.clock.Now().In(n.loc))
}

// ExtractFromImage reads an expense candidate out of a receipt or payment screenshot.
func (n *Normalizer) ExtractFromImage(ctx context.Context, image []byte, mimeType string) Result[entity.ExpenseCandidate] {
	if mimeType == "" {
		mimeType = defaultImageFormat
	}
	today := n.Today()

	text, reason := n.generate(ctx, adapter.GenerateRequest{
		Operation: OpExtractImage,
		Prompt:    imagePrompt(),
		Image:     image,
		MIMEType:  mimeType,
	})

	var fields jsonFields
	if reason == ReasonNone {
		fields, reason = extractJSONObject(text)
	}

	switch reason {
	case ReasonNone:
	case ReasonJSONAbsent, ReasonEmptyResponse:
		return record(n, OpExtractImage, fallback(fallbackCandidate(DefaultImageTitle, today, absentJSONConf), reason))
	default:
		return record(n, OpExtractImage, fallback(fallbackCandidate(FailedImageTitle, today, failedExtractConf), reason))
	}

	return record(n, OpExtractImage, parsed(candidateFrom(fields, DefaultImageTitle, today)))
}

// Categorize asks the model for a single category for the given title and merchant.
func (n *Normalizer) Categorize(ctx context.Context, title, merchant string) Result[entity.Category] {
	text, reason := n.generate(ctx, adapter.GenerateRequest{
		Operation: OpCategorize,
		Prompt:    categorizePrompt(title, merchant),
	})
	if reason != ReasonNone {
		return record(n, OpCategorize, fallback(entity.CategoryOther, reason))
	}

	category, ok := entity.ParseCategory(strings.TrimSpace(text))
	if !ok {
		return record(n, OpCategorize, fallback(entity.CategoryOther, ReasonInvalidValue))
	}
	return record(n, OpCategorize, parsed(category))
}

// Advice returns short financial tips derived from recent expenses and budgets.
func (n *Normalizer) Advice(ctx context.Context, expenses []*entity.Expense, budgets []*entity.Budget) Result[[]string] {
	fields, reason := n.generateJSON(ctx, adapter.GenerateRequest{
		Operation: OpAdvice,
		Prompt:    advicePrompt(expenses, budgets),
	})
	if reason != ReasonNone {
		return record(n, OpAdvice, fallback(defaultTips(), reason))
	}

	tips := fields.stringList("tips")
	if len(tips) == 0 {
		return record(n, OpAdvice, fallback(defaultTips(), ReasonInvalidValue))
	}
	return record(n, OpAdvice, parsed(tips))
}

// Predict forecasts next month's total spending from recent expenses.
func (n *Normalizer) Predict(ctx context.Context, expenses []*entity.Expense) Result[Prediction] {
	fields, reason := n.generateJSON(ctx, adapter.GenerateRequest{
		Operation: OpPredict,
		Prompt:    predictionPrompt(expenses),
	})
	if reason != ReasonNone {
		return record(n, OpPredict, fallback(Prediction{Prediction: decimal.Zero}, reason))
	}

	return record(n, OpPredict, parsed(Prediction{
		Prediction: fields.amount("prediction"),
		Confidence: fields.confidence("confidence"),
	}))
}

// GenerateNote writes a short free-text note for an expense.
func (n *Normalizer) GenerateNote(ctx context.Context, title string, amount decimal.Decimal, category entity.Category) Result[string] {
	text, reason := n.generate(ctx, adapter.GenerateRequest{
		Operation: OpNote,
		Prompt:    notePrompt(title, amount, category),
	})
	if reason != ReasonNone {
		return record(n, OpNote, fallback(templateNote(amount, category), reason))
	}
	return record(n, OpNote, parsed(strings.TrimSpace(text)))
}

// ParseVoice turns transcribed speech into an expense candidate.
// A nil Value means the input could not be understood.
func (n *Normalizer) ParseVoice(ctx context.Context, speech string) Result[*entity.ExpenseCandidate] {
	today := n.Today()

	fields, reason := n.generateJSON(ctx, adapter.GenerateRequest{
		Operation: OpParseVoice,
		Prompt:    voicePrompt(speech, today),
	})
	if reason != ReasonNone {
		return record(n, OpParseVoice, fallback[*entity.ExpenseCandidate](nil, reason))
	}

	candidate := candidateFrom(fields, DefaultVoiceTitle, today)
	return record(n, OpParseVoice, parsed(&candidate))
}

// ParseQuery extracts search filters from a natural-language query.
// Unrecognized, null and invalid values are omitted. Any failure yields empty filters.
func (n *Normalizer) ParseQuery(ctx context.Context, query string) Result[entity.SearchFilters] {
	fields, reason := n.generateJSON(ctx, adapter.GenerateRequest{
		Operation: OpParseQuery,
		Prompt:    queryPrompt(query, n.Today()),
	})
	if reason != ReasonNone {
		return record(n, OpParseQuery, fallback(entity.SearchFilters{}, reason))
	}
	return record(n, OpParseQuery, parsed(filtersFrom(fields)))
}

// generate calls the gateway and maps failures and blank answers to a fallback reason.
func (n *Normalizer) generate(ctx context.Context, req adapter.GenerateRequest) (string, FallbackReason) {
	text, err := n.gateway.Generate(ctx, req)
	if err != nil {
		kind := domainerror.AIFailureKindOf(err)
		if kind == domainerror.AIFailureEmptyResponse {
			return "", ReasonEmptyResponse
		}
		slog.Warn("AI gateway call failed", "operation", req.Operation, "kind", kind, "error", err)
		return "", ReasonGatewayError
	}
	if strings.TrimSpace(text) == "" {
		return "", ReasonEmptyResponse
	}
	return text, ReasonNone
}

func (n *Normalizer) generateJSON(ctx context.Context, req adapter.GenerateRequest) (jsonFields, FallbackReason) {
	text, reason := n.generate(ctx, req)
	if reason != ReasonNone {
		return nil, reason
	}
	return extractJSONObject(text)
}

func record[T any](n *Normalizer, operation string, r Result[T]) Result[T] {
	if r.IsFallback() {
		slog.Info("AI response normalized to fallback", "operation", operation, "reason", r.Reason)
	}
	if n.observer != nil {
		n.observer.ObserveOutcome(operation, r.Source, r.Reason)
	}
	return r
}

func candidateFrom(fields jsonFields, defaultTitle string, today time.Time) entity.ExpenseCandidate {
	title, ok := fields.rawString("title")
	if !ok {
		title = defaultTitle
	}
	date, ok := fields.calendarDate("date")
	if !ok {
		date = today
	}
	merchant, _ := fields.rawString("merchant")

	return entity.ExpenseCandidate{
		Title:      title,
		Amount:     fields.amount("amount"),
		Category:   fields.category("category"),
		Date:       date,
		Merchant:   merchant,
		Confidence: fields.confidence("confidence"),
	}
}

func fallbackCandidate(title string, today time.Time, confidence float64) entity.ExpenseCandidate {
	return entity.ExpenseCandidate{
		Title:      title,
		Amount:     decimal.Zero,
		Category:   entity.CategoryOther,
		Date:       today,
		Confidence: confidence,
	}
}

func filtersFrom(fields jsonFields) entity.SearchFilters {
	var f entity.SearchFilters

	if s, ok := fields.rawString("category"); ok {
		if c := entity.Category(s); c.IsValid() {
			f.Category = &c
		}
	}
	if d, ok := fields.calendarDate("startDate"); ok {
		f.StartDate = &d
	}
	if d, ok := fields.calendarDate("endDate"); ok {
		f.EndDate = &d
	}
	if v, ok := nonNegativeAmount(fields, "minAmount"); ok {
		f.MinAmount = &v
	}
	if v, ok := nonNegativeAmount(fields, "maxAmount"); ok {
		f.MaxAmount = &v
	}
	if s, ok := fields.rawString("search"); ok {
		f.Search = &s
	}
	if s, ok := fields.rawString("sortBy"); ok {
		if sb := entity.SortField(strings.ToLower(s)); sb.IsValid() {
			f.SortBy = &sb
		}
	}
	if s, ok := fields.rawString("sortOrder"); ok {
		if so := entity.SortOrder(strings.ToLower(s)); so.IsValid() {
			f.SortOrder = &so
		}
	}

	return f
}

func nonNegativeAmount(fields jsonFields, key string) (decimal.Decimal, bool) {
	n, ok := fields.number(key)
	if !ok || n < 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(n).Round(2), true
}

func templateNote(amount decimal.Decimal, category entity.Category) string {
	return string(category) + " expense of " + amount.String()
}

func defaultTips() []string {
	tips := make([]string, len(DefaultTips))
	copy(tips, DefaultTips)
	return tips
}
