package generation

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").Option("missingkey=error").ParseFS(promptFS, "prompts/*.tmpl"))

const (
	tmplCombined      = "combined.tmpl"
	tmplResume        = "resume.tmpl"
	tmplCareerHistory = "career_history.tmpl"
	tmplSuggestSkills = "suggest_skills.tmpl"
	tmplSummarize     = "summarize.tmpl"
)

func templateFor(docTypes []DocType) string {
	if len(docTypes) == 1 {
		switch docTypes[0] {
		case DocResume:
			return tmplResume
		case DocCareerHistory:
			return tmplCareerHistory
		}
	}
	return tmplCombined
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
