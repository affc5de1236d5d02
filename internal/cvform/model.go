package cvform

// Gender values accepted on personal info.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// PersonalInfo holds the applicant's contact and identity fields.
type PersonalInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	DOB     string `json:"dob"`
	Gender  string `json:"gender"`
}

// Education is one entry of the education history.
type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Major          string `json:"major"`
	GraduationDate string `json:"graduationDate"`
}

// Experience is one entry of the work history.
type Experience struct {
	Company          string `json:"company"`
	Position         string `json:"position"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	Responsibilities string `json:"responsibilities"`
}

// Skills combines the closed-vocabulary selection with a free-text addendum.
type Skills struct {
	Selected []string `json:"selected"`
	Other    string   `json:"other"`
}

// Certification is one licence or qualification.
type Certification struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// FormInput is the raw form payload as submitted by the presentation layer.
// Nothing in it is trusted until Validate accepts it.
type FormInput struct {
	PersonalInfo      PersonalInfo    `json:"personalInfo"`
	JobTitle          string          `json:"jobTitle"`
	Education         []Education     `json:"education"`
	Experience        []Experience    `json:"experience"`
	Skills            Skills          `json:"skills"`
	Certifications    []Certification `json:"certifications"`
	Goals             string          `json:"goals"`
	PersonalInterests string          `json:"personalInterests"`
}

// CV is a validated form. Slices are never nil.
type CV struct {
	PersonalInfo      PersonalInfo    `json:"personalInfo"`
	JobTitle          string          `json:"jobTitle"`
	Education         []Education     `json:"education"`
	Experience        []Experience    `json:"experience"`
	Skills            Skills          `json:"skills"`
	Certifications    []Certification `json:"certifications"`
	Goals             string          `json:"goals"`
	PersonalInterests string          `json:"personalInterests"`
}

// Clone returns a deep copy of the CV.
func (cv CV) Clone() CV {
	out := cv
	out.Education = append([]Education{}, cv.Education...)
	out.Experience = append([]Experience{}, cv.Experience...)
	out.Certifications = append([]Certification{}, cv.Certifications...)
	out.Skills.Selected = append([]string{}, cv.Skills.Selected...)
	return out
}
