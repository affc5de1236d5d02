package generation

import (
	"context"
	"errors"
	"strings"

	"cv-backend/internal/llm"
)

const maxSuggestedSkills = 10

var (
	suggestSkillsSchema = llm.Schema{
		Name: "suggested_skills",
		Fields: []llm.Field{
			{Name: "skills", Kind: llm.KindStringList, Description: "A list of suggested skills for the job title."},
		},
	}
	summarySchema = llm.Schema{
		Name: "experience_summary",
		Fields: []llm.Field{
			{Name: "summary", Kind: llm.KindString, Description: "A concise summary of the work experience."},
		},
	}

	// ErrEmptyInput is returned when the auxiliary flows get blank input.
	ErrEmptyInput = errors.New("input is empty")
)

// SuggestSkills asks the backend for skills relevant to jobTitle. At most ten
// skills are returned, duplicates removed.
func (g *Gateway) SuggestSkills(ctx context.Context, jobTitle string) ([]string, error) {
	jobTitle = strings.TrimSpace(jobTitle)
	if jobTitle == "" {
		return nil, ErrEmptyInput
	}
	prompt, err := render(tmplSuggestSkills, struct{ JobTitle string }{jobTitle})
	if err != nil {
		return nil, err
	}
	fields, err := g.invoke(ctx, "suggest_skills", prompt, suggestSkillsSchema)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]string, 0, maxSuggestedSkills)
	for _, s := range fields["skills"].([]string) {
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if len(out) == maxSuggestedSkills {
			break
		}
	}
	return out, nil
}

// SummarizeExperience condenses free-form work experience text.
func (g *Gateway) SummarizeExperience(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}
	prompt, err := render(tmplSummarize, struct{ Text string }{text})
	if err != nil {
		return "", err
	}
	fields, err := g.invoke(ctx, "summarize_experience", prompt, summarySchema)
	if err != nil {
		return "", err
	}
	return fields["summary"].(string), nil
}
