package generation

import (
	"fmt"
	"strings"

	"cv-backend/internal/cvform"
)

// DocType selects one of the generated documents.
type DocType string

const (
	DocResume        DocType = "resumeDoc"
	DocCareerHistory DocType = "careerHistoryDoc"
)

// DocTypes lists every document type in output order.
var DocTypes = []DocType{DocResume, DocCareerHistory}

// ParseDocType accepts the wire names of the document types.
func ParseDocType(s string) (DocType, error) {
	for _, t := range DocTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDocType, s)
}

// Request is the generation input derived from a validated CV.
type Request struct {
	PersonalInfo      cvform.PersonalInfo
	JobTitle          string
	Education         []cvform.Education
	Experience        []cvform.Experience
	Skills            []string
	Certifications    []cvform.Certification
	Goals             string
	PersonalInterests string
}

// NewRequest derives a Request, flattening selected and free-text skills.
func NewRequest(cv cvform.CV) Request {
	cv = cv.Clone()
	return Request{
		PersonalInfo:      cv.PersonalInfo,
		JobTitle:          cv.JobTitle,
		Education:         cv.Education,
		Experience:        cv.Experience,
		Skills:            cvform.FlattenSkills(cv.Skills.Selected, cv.Skills.Other),
		Certifications:    cv.Certifications,
		Goals:             cv.Goals,
		PersonalInterests: cv.PersonalInterests,
	}
}

// Result holds the generated documents. Requested fields are never empty.
type Result struct {
	ResumeDoc        string
	CareerHistoryDoc string
}

// Doc returns the document of the given type.
func (r Result) Doc(t DocType) string {
	switch t {
	case DocResume:
		return r.ResumeDoc
	case DocCareerHistory:
		return r.CareerHistoryDoc
	}
	return ""
}
