package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Backend abstracts the external text-generation provider. Invoke sends one
// prompt and asks the provider to constrain its answer to schema; the raw JSON
// object is returned as-is and callers must still validate it.
type Backend interface {
	Invoke(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error)
}

var (
	// ErrUnavailable marks transport, HTTP and provider-side failures.
	ErrUnavailable = errors.New("generation backend unavailable")

	// ErrInvalidOutput marks an answer that carries no usable object, such as
	// a refusal or empty content.
	ErrInvalidOutput = errors.New("generation backend returned no usable output")

	// ErrNotConfigured is returned by the placeholder backend.
	ErrNotConfigured = fmt.Errorf("%w: no provider configured", ErrUnavailable)
)

// PlaceholderBackend is used when no provider is configured.
type PlaceholderBackend struct{}

// Invoke returns ErrNotConfigured.
func (PlaceholderBackend) Invoke(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	_ = ctx
	_ = prompt
	_ = schema
	return nil, ErrNotConfigured
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error)

// Invoke calls f.
func (f BackendFunc) Invoke(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	return f(ctx, prompt, schema)
}
