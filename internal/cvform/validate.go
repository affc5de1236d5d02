package cvform

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("invalid form input")

// FieldError describes one failing field.
type FieldError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ValidationError lists every failing field of a form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Path+": "+f.Reason)
	}
	return "invalid form input: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalid) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

type collector struct {
	fields []FieldError
}

func (c *collector) add(path, reason string) {
	c.fields = append(c.fields, FieldError{Path: path, Reason: reason})
}

func (c *collector) required(path, value, reason string) {
	if value == "" {
		c.add(path, reason)
	}
}

// Validate checks a raw form and returns the trimmed, validated CV. All
// violations are reported together; on failure the zero CV is returned.
func Validate(in FormInput) (CV, error) {
	cv := normalize(in)
	var c collector

	pi := cv.PersonalInfo
	c.required("personalInfo.name", pi.Name, "Full name is required")
	c.required("personalInfo.email", pi.Email, "Email is required")
	c.required("personalInfo.phone", pi.Phone, "Phone number is required")
	c.required("personalInfo.address", pi.Address, "Address is required")
	c.required("personalInfo.dob", pi.DOB, "Date of birth is required")
	switch pi.Gender {
	case GenderMale, GenderFemale, GenderOther:
	case "":
		c.add("personalInfo.gender", "Gender is required")
	default:
		c.add("personalInfo.gender", "Gender must be one of male, female, other")
	}
	if pi.Email != "" && !validEmail(pi.Email) {
		c.add("personalInfo.email", "Invalid email address")
	}
	c.required("jobTitle", cv.JobTitle, "Job title is required")

	if len(cv.Education) == 0 {
		c.add("education", "At least one education entry is required")
	}
	for i, e := range cv.Education {
		p := fmt.Sprintf("education[%d]", i)
		c.required(p+".institution", e.Institution, "Institution is required")
		c.required(p+".degree", e.Degree, "Degree is required")
		c.required(p+".major", e.Major, "Major is required")
		c.required(p+".graduationDate", e.GraduationDate, "Graduation date is required")
	}
	for i, e := range cv.Experience {
		p := fmt.Sprintf("experience[%d]", i)
		c.required(p+".company", e.Company, "Company is required")
		c.required(p+".position", e.Position, "Position is required")
		c.required(p+".startDate", e.StartDate, "Start date is required")
		c.required(p+".endDate", e.EndDate, "End date is required")
		c.required(p+".responsibilities", e.Responsibilities, "Responsibilities are required")
	}
	for i, cert := range cv.Certifications {
		p := fmt.Sprintf("certifications[%d]", i)
		c.required(p+".name", cert.Name, "Certification name is required")
		c.required(p+".date", cert.Date, "Certification date is required")
	}
	for i, s := range cv.Skills.Selected {
		if !IsSkillOption(s) {
			c.add(fmt.Sprintf("skills.selected[%d]", i), "Unknown skill option")
		}
	}
	c.required("goals", cv.Goals, "Career goals are required")

	if len(c.fields) > 0 {
		return CV{}, &ValidationError{Fields: c.fields}
	}
	return cv, nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// ParseAddress accepts "Name <a@b>"; the form wants the bare address.
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@")+1:], ".")
}

func normalize(in FormInput) CV {
	cv := CV{
		PersonalInfo: PersonalInfo{
			Name:    strings.TrimSpace(in.PersonalInfo.Name),
			Email:   strings.TrimSpace(in.PersonalInfo.Email),
			Phone:   strings.TrimSpace(in.PersonalInfo.Phone),
			Address: strings.TrimSpace(in.PersonalInfo.Address),
			DOB:     strings.TrimSpace(in.PersonalInfo.DOB),
			Gender:  strings.ToLower(strings.TrimSpace(in.PersonalInfo.Gender)),
		},
		JobTitle:          strings.TrimSpace(in.JobTitle),
		Education:         make([]Education, 0, len(in.Education)),
		Experience:        make([]Experience, 0, len(in.Experience)),
		Certifications:    make([]Certification, 0, len(in.Certifications)),
		Goals:             strings.TrimSpace(in.Goals),
		PersonalInterests: strings.TrimSpace(in.PersonalInterests),
		Skills: Skills{
			Selected: make([]string, 0, len(in.Skills.Selected)),
			Other:    strings.TrimSpace(in.Skills.Other),
		},
	}
	for _, e := range in.Education {
		cv.Education = append(cv.Education, Education{
			Institution:    strings.TrimSpace(e.Institution),
			Degree:         strings.TrimSpace(e.Degree),
			Major:          strings.TrimSpace(e.Major),
			GraduationDate: strings.TrimSpace(e.GraduationDate),
		})
	}
	for _, e := range in.Experience {
		cv.Experience = append(cv.Experience, Experience{
			Company:          strings.TrimSpace(e.Company),
			Position:         strings.TrimSpace(e.Position),
			StartDate:        strings.TrimSpace(e.StartDate),
			EndDate:          strings.TrimSpace(e.EndDate),
			Responsibilities: strings.TrimSpace(e.Responsibilities),
		})
	}
	for _, cert := range in.Certifications {
		cv.Certifications = append(cv.Certifications, Certification{
			Name: strings.TrimSpace(cert.Name),
			Date: strings.TrimSpace(cert.Date),
		})
	}
	for _, s := range in.Skills.Selected {
		cv.Skills.Selected = append(cv.Skills.Selected, strings.TrimSpace(s))
	}
	return cv
}
