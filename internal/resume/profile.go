package resume

import (
	"encoding/json"
	"fmt"
)

// PersonalInformation holds the candidate's identity and contact fields.
type PersonalInformation struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Country  string `json:"country"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// SelfIdentification holds voluntary self-identification answers.
type SelfIdentification struct {
	Gender     string `json:"gender,omitempty"`
	Pronouns   string `json:"pronouns,omitempty"`
	Veteran    string `json:"veteran,omitempty"`
	Disability string `json:"disability,omitempty"`
	Ethnicity  string `json:"ethnicity,omitempty"`
}

// LegalAuthorization holds work-authorization and visa fields.
type LegalAuthorization struct {
	EUWorkAuthorization   bool `json:"eu_work_authorization"`
	USWorkAuthorization   bool `json:"us_work_authorization"`
	RequiresUSVisa        bool `json:"requires_us_visa"`
	RequiresEUVisa        bool `json:"requires_eu_visa"`
	RequiresUSSponsorship bool `json:"requires_us_sponsorship"`
	RequiresEUSponsorship bool `json:"requires_eu_sponsorship"`
}

// WorkPreferences holds remote/relocation/work-style preferences.
type WorkPreferences struct {
	RemoteWork         bool `json:"remote_work"`
	InPersonWork       bool `json:"in_person_work"`
	OpenToRelocation   bool `json:"open_to_relocation"`
	WillingToTravel    bool `json:"willing_to_travel"`
	AssessmentsAllowed bool `json:"assessments_allowed"`
}

// Education is one education entry.
type Education struct {
	Degree         string `json:"degree"`
	University     string `json:"university"`
	FieldOfStudy   string `json:"field_of_study,omitempty"`
	GraduationYear string `json:"graduation_year,omitempty"`
	GPA            string `json:"gpa,omitempty"`
}

// Experience is one professional experience entry.
type Experience struct {
	Position            string   `json:"position"`
	Company             string   `json:"company"`
	EmploymentPeriod    string   `json:"employment_period,omitempty"`
	Location            string   `json:"location,omitempty"`
	Industry            string   `json:"industry,omitempty"`
	KeyResponsibilities []string `json:"key_responsibilities,omitempty"`
	SkillsAcquired      []string `json:"skills_acquired,omitempty"`
}

// Project is one personal or professional project entry.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Availability holds the notice period.
type Availability struct {
	NoticePeriod string `json:"notice_period,omitempty"`
}

// SalaryExpectations holds the expected salary range.
type SalaryExpectations struct {
	SalaryRangeUSD string `json:"salary_range_usd,omitempty"`
}

// Language is one spoken language with proficiency.
type Language struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Profile is the full structured resume dataset. One section per topic.
type Profile struct {
	PersonalInformation PersonalInformation `json:"personal_information"`
	SelfIdentification  SelfIdentification  `json:"self_identification,omitempty"`
	LegalAuthorization  LegalAuthorization  `json:"legal_authorization,omitempty"`
	WorkPreferences     WorkPreferences     `json:"work_preferences,omitempty"`
	EducationDetails    []Education         `json:"education_details,omitempty"`
	ExperienceDetails   []Experience        `json:"experience_details,omitempty"`
	Projects            []Project           `json:"projects,omitempty"`
	Availability        Availability        `json:"availability,omitempty"`
	SalaryExpectations  SalaryExpectations  `json:"salary_expectations,omitempty"`
	Certifications      []string            `json:"certifications,omitempty"`
	Languages           []Language          `json:"languages,omitempty"`
	Interests           []string            `json:"interests,omitempty"`
}

// Provider supplies prompt-sized context slices of the candidate profile.
// The bridge passes it by reference; there is no ambient global lookup.
type Provider interface {
	// Slice returns the profile section for one topic as compact JSON.
	Slice(topic Topic) (string, error)
	// Full returns the whole profile as JSON, for prompts that genuinely
	// need everything (cover letters).
	Full() (string, error)
}

// Slice returns the JSON encoding of the section matching the topic. Only
// the relevant subset of the dataset enters a prompt, bounding prompt size.
func (p *Profile) Slice(topic Topic) (string, error) {
	var section any
	switch topic {
	case TopicPersonalInformation:
		section = p.PersonalInformation
	case TopicSelfIdentification:
		section = p.SelfIdentification
	case TopicLegalAuthorization:
		section = p.LegalAuthorization
	case TopicWorkPreferences:
		section = p.WorkPreferences
	case TopicEducationDetails:
		section = p.EducationDetails
	case TopicExperienceDetails:
		section = p.ExperienceDetails
	case TopicProjects:
		section = p.Projects
	case TopicAvailability:
		section = p.Availability
	case TopicSalaryExpectations:
		section = p.SalaryExpectations
	case TopicCertifications:
		section = p.Certifications
	case TopicLanguages:
		section = p.Languages
	case TopicInterests:
		section = p.Interests
	default:
		return "", fmt.Errorf("unknown profile topic %q", topic)
	}

	data, err := json.MarshalIndent(section, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s slice: %w", topic, err)
	}
	return string(data), nil
}

// Full returns the whole profile as indented JSON.
func (p *Profile) Full() (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}
	return string(data), nil
}
