package cvform

import "strings"

// SkillOptions is the closed vocabulary offered by the form's skill picker.
var SkillOptions = []string{
	"Japanese (JLPT N1)",
	"Japanese (JLPT N2)",
	"English (Business Level)",
	"React",
	"Next.js",
	"TypeScript",
	"Node.js",
	"Python",
	"AWS",
	"Google Cloud Platform",
}

// IsSkillOption reports whether s belongs to SkillOptions.
func IsSkillOption(s string) bool {
	for _, opt := range SkillOptions {
		if opt == s {
			return true
		}
	}
	return false
}

// FlattenSkills merges the selected skills and the comma-separated free text
// into one ordered list. Selected skills come first in the order given. Free-text
// tokens are trimmed, empty tokens dropped, and a token is skipped when it
// matches (case-insensitively) any skill already in the list.
func FlattenSkills(selected []string, other string) []string {
	out := make([]string, 0, len(selected))
	seen := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		out = append(out, s)
		seen[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, token := range splitSkillText(other) {
		key := strings.ToLower(token)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, token)
	}
	return out
}

func splitSkillText(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '、' || r == '，'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
