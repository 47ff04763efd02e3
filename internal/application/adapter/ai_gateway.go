package adapter

import "context"

// GenerateRequest is one call to the generative model.
type GenerateRequest struct {
	// Operation labels the call for logs and metrics.
	Operation string
	Prompt    string
	Image     []byte
	MIMEType  string
}

// AIGateway wraps the external generative model.
type AIGateway interface {
	// Generate sends the prompt, and the image when present, and returns the raw text answer.
	// Failures are returned as *domainerror.AIGatewayError.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
