// Package resume provides the typed candidate profile the oracle bridge
// slices into prompts. Questions are classified into one of a closed set of
// topics before a context slice is selected; there is no free-text section
// guessing.
package resume

// Topic identifies the profile section relevant to a question. The set is
// closed: the bridge maps every question onto exactly one of these before
// building a prompt.
type Topic string

// The closed topic set, one per profile section.
const (
	TopicPersonalInformation Topic = "personal_information"
	TopicSelfIdentification  Topic = "self_identification"
	TopicLegalAuthorization  Topic = "legal_authorization"
	TopicWorkPreferences     Topic = "work_preferences"
	TopicEducationDetails    Topic = "education_details"
	TopicExperienceDetails   Topic = "experience_details"
	TopicProjects            Topic = "projects"
	TopicAvailability        Topic = "availability"
	TopicSalaryExpectations  Topic = "salary_expectations"
	TopicCertifications      Topic = "certifications"
	TopicLanguages           Topic = "languages"
	TopicInterests           Topic = "interests"
)

// AllTopics returns the closed topic set in a stable order.
func AllTopics() []Topic {
	return []Topic{
		TopicPersonalInformation,
		TopicSelfIdentification,
		TopicLegalAuthorization,
		TopicWorkPreferences,
		TopicEducationDetails,
		TopicExperienceDetails,
		TopicProjects,
		TopicAvailability,
		TopicSalaryExpectations,
		TopicCertifications,
		TopicLanguages,
		TopicInterests,
	}
}

// ParseTopic maps a string onto the closed topic set.
func ParseTopic(s string) (Topic, bool) {
	for _, t := range AllTopics() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}
