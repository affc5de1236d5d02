package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cv-backend/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestInvokeSendsStructuredOutputRequest(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[{"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"}}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	}))
	defer srv.Close()

	orig := apiURL
	apiURL = srv.URL
	defer func() { apiURL = orig }()

	client, err := NewClient("test-key", "gpt-5-mini", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	schema := llm.Schema{Name: "summary", Fields: []llm.Field{{Name: "summary", Kind: llm.KindString}}}
	raw, err := client.Invoke(context.Background(), "prompt", schema)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if string(raw) != `{"summary":"ok"}` {
		t.Fatalf("unexpected content %s", raw)
	}

	if _, ok := got["temperature"]; ok {
		t.Fatalf("temperature must be omitted for gpt-5 models")
	}
	format := got["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("unexpected response_format %v", format)
	}
	js := format["json_schema"].(map[string]any)
	if js["name"] != "summary" || js["strict"] != true {
		t.Fatalf("unexpected json_schema %v", js)
	}
	prop := js["schema"].(map[string]any)["properties"].(map[string]any)["summary"].(map[string]any)
	if _, ok := prop["minLength"]; ok {
		t.Fatalf("strict schema must not carry minLength: %v", prop)
	}
}

func TestInvokeHTTPErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	orig := apiURL
	apiURL = srv.URL
	defer func() { apiURL = orig }()

	client, err := NewClient("test-key", "gpt-4o", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Invoke(context.Background(), "prompt", llm.Schema{Name: "x"})
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", "gpt-4o", 0); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestInvokeRefusalIsInvalidOutput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "refusal", body: `{"choices":[{"message":{"role":"assistant","content":"","refusal":"I can't help with that"}}]}`},
		{name: "empty content", body: `{"choices":[{"message":{"role":"assistant","content":"  "}}]}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			orig := apiURL
			apiURL = srv.URL
			defer func() { apiURL = orig }()

			client, err := NewClient("test-key", "gpt-4o", time.Second)
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			_, err = client.Invoke(context.Background(), "prompt", llm.Schema{Name: "x"})
			if !errors.Is(err, llm.ErrInvalidOutput) || errors.Is(err, llm.ErrUnavailable) {
				t.Fatalf("expected ErrInvalidOutput, got %v", err)
			}
		})
	}
}
