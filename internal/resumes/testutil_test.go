package resumes

import (
	"testing"
	"time"

	"cv-backend/internal/cvform"
)

func sampleCV(goals string) cvform.CV {
	return cvform.CV{
		PersonalInfo: cvform.PersonalInfo{
			Name:    "Hanako",
			Email:   "hanako@example.com",
			Phone:   "03-0000-0000",
			Address: "Osaka",
			DOB:     "1995-05-05",
			Gender:  cvform.GenderFemale,
		},
		JobTitle:       "Data Engineer",
		Education:      []cvform.Education{{Institution: "Osaka University", Degree: "MSc", Major: "Statistics", GraduationDate: "2019-03"}},
		Experience:     []cvform.Experience{},
		Skills:         cvform.Skills{Selected: []string{"Python"}, Other: "SQL"},
		Certifications: []cvform.Certification{},
		Goals:          goals,
	}
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}
	var zero T
	return zero
}

func expectNone[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected delivery: %+v", v)
	case <-time.After(100 * time.Millisecond):
	}
}
