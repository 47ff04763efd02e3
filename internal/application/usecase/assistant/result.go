// Package assistant contains the AI-backed use cases and the normalizer that turns
// free-form model output into typed results.
package assistant

// Source tells whether a result came from the model or from a fallback.
type Source string

const (
	SourceParsed   Source = "parsed"
	SourceFallback Source = "fallback"
)

// FallbackReason explains why a fallback value was returned.
type FallbackReason string

const (
	ReasonNone          FallbackReason = ""
	ReasonGatewayError  FallbackReason = "gateway_error"
	ReasonEmptyResponse FallbackReason = "empty_response"
	ReasonJSONAbsent    FallbackReason = "json_absent"
	ReasonJSONMalformed FallbackReason = "json_malformed"
	ReasonInvalidValue  FallbackReason = "invalid_value"
)

// Result is the tagged outcome of a normalizer operation. Value is always usable.
type Result[T any] struct {
	Value  T
	Source Source
	Reason FallbackReason
}

// IsFallback reports whether Value is a documented substitute.
func (r Result[T]) IsFallback() bool {
	return r.Source == SourceFallback
}

func parsed[T any](v T) Result[T] {
	return Result[T]{Value: v, Source: SourceParsed}
}

func fallback[T any](v T, reason FallbackReason) Result[T] {
	return Result[T]{Value: v, Source: SourceFallback, Reason: reason}
}
