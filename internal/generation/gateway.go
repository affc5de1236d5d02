package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cv-backend/internal/llm"
	"cv-backend/internal/shared/metrics"
	"cv-backend/internal/shared/telemetry"
)

const defaultTimeout = 120 * time.Second

var docDescriptions = map[DocType]string{
	DocResume:        "The generated 履歴書 (Rirekisho) draft in Markdown.",
	DocCareerHistory: "The generated 職務経歴書 (Shokumu Keirekisho) draft in Markdown.",
}

// Gateway renders prompts, invokes the backend and enforces the output schema.
// It never retries and never returns a partial result.
type Gateway struct {
	backend llm.Backend
	timeout time.Duration
	now     func() time.Time
}

// NewGateway builds a gateway. A nil backend uses llm.PlaceholderBackend and a
// non-positive timeout uses 120s.
func NewGateway(backend llm.Backend, timeout time.Duration) *Gateway {
	if backend == nil {
		backend = llm.PlaceholderBackend{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gateway{backend: backend, timeout: timeout, now: time.Now}
}

// Generate produces the requested documents. With no doc types, or both, the
// combined template is used and both documents are returned.
func (g *Gateway) Generate(ctx context.Context, req Request, docTypes ...DocType) (Result, error) {
	types, err := normalizeDocTypes(docTypes)
	if err != nil {
		return Result{}, err
	}
	prompt, err := render(templateFor(types), req)
	if err != nil {
		return Result{}, err
	}

	fields, err := g.invoke(ctx, "generate", prompt, documentSchema(types))
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, t := range types {
		doc := fields[string(t)].(string)
		switch t {
		case DocResume:
			res.ResumeDoc = doc
		case DocCareerHistory:
			res.CareerHistoryDoc = doc
		}
	}
	return res, nil
}

func (g *Gateway) invoke(ctx context.Context, op, prompt string, schema llm.Schema) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	metrics.IncGenerationStarted()
	start := g.now()
	raw, err := g.backend.Invoke(ctx, prompt, schema)
	duration := g.now().Sub(start)
	metrics.ObserveGenerationDurationMs(float64(duration.Milliseconds()))

	fields := map[string]any{
		"op":          op,
		"schema":      schema.Name,
		"duration_ms": duration.Milliseconds(),
	}
	if errors.Is(err, llm.ErrInvalidOutput) {
		metrics.IncGenerationFailed()
		fields["cause"] = ErrSchemaViolation.Error()
		fields["error"] = err.Error()
		telemetry.Error("generation.failed", fields)
		return nil, schemaViolation(op, err)
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		metrics.IncGenerationFailed()
		fields["cause"] = ErrBackendUnavailable.Error()
		fields["error"] = err.Error()
		telemetry.Error("generation.failed", fields)
		return nil, unavailable(op, err)
	}

	out, err := validateOutput(schema, raw)
	if err != nil {
		metrics.IncGenerationFailed()
		fields["cause"] = ErrSchemaViolation.Error()
		fields["error"] = err.Error()
		telemetry.Error("generation.failed", fields)
		return nil, schemaViolation(op, err)
	}

	metrics.IncGenerationCompleted()
	telemetry.Info("generation.completed", fields)
	return out, nil
}

func normalizeDocTypes(docTypes []DocType) ([]DocType, error) {
	seen := make(map[DocType]bool, len(DocTypes))
	for _, t := range docTypes {
		if _, ok := docDescriptions[t]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDocType, t)
		}
		seen[t] = true
	}
	if len(seen) == 0 {
		return append([]DocType(nil), DocTypes...), nil
	}
	out := make([]DocType, 0, len(seen))
	for _, t := range DocTypes {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out, nil
}

func documentSchema(types []DocType) llm.Schema {
	schema := llm.Schema{Name: "cv_documents"}
	if len(types) == 1 {
		schema.Name = string(types[0])
	}
	for _, t := range types {
		schema.Fields = append(schema.Fields, llm.Field{
			Name:        string(t),
			Description: docDescriptions[t],
			Kind:        llm.KindString,
		})
	}
	return schema
}
