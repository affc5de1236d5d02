package gemini

import (
	"reflect"
	"testing"

	"google.golang.org/genai"

	"cv-backend/internal/llm"
)

func TestToGenaiSchema(t *testing.T) {
	schema := llm.Schema{
		Name: "skills",
		Fields: []llm.Field{
			{Name: "summary", Kind: llm.KindString, Description: "short"},
			{Name: "skills", Kind: llm.KindStringList},
		},
	}

	got := toGenaiSchema(schema)
	if got.Type != genai.TypeObject {
		t.Fatalf("expected object, got %v", got.Type)
	}
	if !reflect.DeepEqual(got.Required, []string{"summary", "skills"}) {
		t.Fatalf("unexpected required: %v", got.Required)
	}
	if got.Properties["summary"].Type != genai.TypeString || got.Properties["summary"].Description != "short" {
		t.Fatalf("unexpected summary schema: %+v", got.Properties["summary"])
	}
	list := got.Properties["skills"]
	if list.Type != genai.TypeArray || list.Items == nil || list.Items.Type != genai.TypeString {
		t.Fatalf("unexpected skills schema: %+v", list)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(t.Context(), " ", ""); err == nil {
		t.Fatalf("expected error for missing key")
	}
}
