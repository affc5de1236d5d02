package cvs

import (
	"cv-backend/internal/cvform"
	"cv-backend/internal/resumes"
)

// SuggestSkillsRequest is the body of POST /skills/suggest.
type SuggestSkillsRequest struct {
	JobTitle string `json:"jobTitle"`
}

// SummarizeRequest is the JSON body of POST /experience/summarize.
type SummarizeRequest struct {
	WorkExperience string `json:"workExperience"`
}

// SkillsResponse lists skills.
type SkillsResponse struct {
	Skills []string `json:"skills"`
}

// SummaryResponse carries an experience summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// ListResponse wraps the owner's records.
type ListResponse struct {
	Items []resumes.Record `json:"items"`
}

func skillOptions() []string {
	return append([]string(nil), cvform.SkillOptions...)
}
