package resumes

import (
	"time"

	"cv-backend/internal/cvform"
)

// Record is one persisted CV with its generated documents.
type Record struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	cvform.CV
	FormattedResumeDoc *string   `json:"formattedResumeDoc"`
	CareerHistoryDoc   *string   `json:"careerHistoryDoc"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.CV = r.CV.Clone()
	out.FormattedResumeDoc = cloneString(r.FormattedResumeDoc)
	out.CareerHistoryDoc = cloneString(r.CareerHistoryDoc)
	return out
}

// Patch lists the fields an update writes. Nil members are left untouched.
type Patch struct {
	Form               *cvform.CV
	FormattedResumeDoc *string
	CareerHistoryDoc   *string
}

// Empty reports whether the patch writes no field.
func (p Patch) Empty() bool {
	return p.Form == nil && p.FormattedResumeDoc == nil && p.CareerHistoryDoc == nil
}

// Apply merges the patch into rec and refreshes UpdatedAt.
func (p Patch) Apply(rec Record, now time.Time) Record {
	out := rec.Clone()
	if p.Form != nil {
		out.CV = p.Form.Clone()
	}
	if p.FormattedResumeDoc != nil {
		out.FormattedResumeDoc = cloneString(p.FormattedResumeDoc)
	}
	if p.CareerHistoryDoc != nil {
		out.CareerHistoryDoc = cloneString(p.CareerHistoryDoc)
	}
	out.UpdatedAt = now
	return out
}

// Change describes a write to one record.
type Change struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
