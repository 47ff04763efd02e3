package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/expense-tracker/backend/internal/application/adapter"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// Gateway is a scripted generative model. Operations without an answer fail like an unreachable model.
type Gateway struct {
	mu       sync.Mutex
	answers  map[string]string
	received map[string]int
}

func NewGateway() *Gateway {
	return &Gateway{
		answers:  map[string]string{},
		received: map[string]int{},
	}
}

// Answer sets the raw text returned for operation.
func (g *Gateway) Answer(operation, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answers[operation] = text
}

// Calls returns how many requests were made for operation.
func (g *Gateway) Calls(operation string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.received[operation]
}

func (g *Gateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answers = map[string]string{}
	g.received = map[string]int{}
}

func (g *Gateway) Generate(_ context.Context, req adapter.GenerateRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.received[req.Operation]++

	text, ok := g.answers[req.Operation]
	if !ok {
		return "", domainerror.NewAIGatewayError(domainerror.AIFailureNetwork, errors.New("connection refused"))
	}
	return text, nil
}
