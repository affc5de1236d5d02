package cvs

import (
	"context"
	"encoding/json"

	"cv-backend/internal/llm"
)

func fixedBackend(out string) llm.Backend {
	return llm.BackendFunc(func(ctx context.Context, prompt string, schema llm.Schema) (json.RawMessage, error) {
		return json.RawMessage(out), nil
	})
}
