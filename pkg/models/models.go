package models

import (
	"strings"
	"time"
)

// TemplateID identifies one of the visual templates a CV can be rendered with
type TemplateID string

const (
	TemplateModern   TemplateID = "modern"
	TemplateClassic  TemplateID = "classic"
	TemplateCreative TemplateID = "creative"

	// DefaultTemplate is selected for new documents
	DefaultTemplate = TemplateModern
)

// KnownTemplates returns the closed set of template ids in display order
func KnownTemplates() []TemplateID {
	return []TemplateID{TemplateModern, TemplateClassic, TemplateCreative}
}

// Valid reports whether t is one of the known templates
func (t TemplateID) Valid() bool {
	for _, known := range KnownTemplates() {
		if t == known {
			return true
		}
	}
	return false
}

// PersonalData represents the contact block at the top of a CV
type PersonalData struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	LinkedIn        string `json:"linkedin"`
	GitHub          string `json:"github"`
	Portfolio       string `json:"portfolio"`
	ProfilePhotoURL string `json:"profile_photo_url"`
}

// Objective represents the career objective block
type Objective struct {
	Position string `json:"position"`
	Stack    string `json:"stack"`
	Goal     string `json:"goal"`
}

// IsZero reports whether no objective field was filled in
func (o Objective) IsZero() bool {
	return o == Objective{}
}

// ExperienceEntry represents a job or personal project
type ExperienceEntry struct {
	ID                string    `json:"id"`
	Company           string    `json:"company"`
	Position          string    `json:"position"`
	StartDate         string    `json:"start_date"` // free text or YYYY-MM
	EndDate           string    `json:"end_date"`
	Current           bool      `json:"current"`
	IsPersonalProject bool      `json:"is_personal_project"`
	Narrative         Narrative `json:"narrative"`
}

// EducationCategory classifies an education entry
type EducationCategory string

const (
	EducationAcademic      EducationCategory = "academic"
	EducationTechnical     EducationCategory = "technical"
	EducationCertification EducationCategory = "certification"
)

// Valid reports whether c is empty or one of the known categories
func (c EducationCategory) Valid() bool {
	switch c {
	case "", EducationAcademic, EducationTechnical, EducationCertification:
		return true
	}
	return false
}

// EducationEntry represents a degree, course, or certification
type EducationEntry struct {
	ID          string            `json:"id"`
	Category    EducationCategory `json:"category"`
	Institution string            `json:"institution"`
	Degree      string            `json:"degree"`
	Field       string            `json:"field"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	InProgress  bool              `json:"in_progress"`
}

// LanguageEntry represents a spoken language and how well it is spoken
type LanguageEntry struct {
	ID          string      `json:"id"`
	Language    string      `json:"language"`
	Proficiency Proficiency `json:"proficiency"`
}

// CVDocument is the aggregate root edited by the user.
// An empty ID means the document has not been saved yet.
type CVDocument struct {
	ID               string            `json:"id,omitempty"`
	PersonalData     PersonalData      `json:"personal_data"`
	Objective        Objective         `json:"objective"`
	Experiences      []ExperienceEntry `json:"experiences"`
	Education        []EducationEntry  `json:"education"`
	Skills           string            `json:"skills"`
	Languages        []LanguageEntry   `json:"languages"`
	SelectedTemplate TemplateID        `json:"selected_design"`
}

// NewDocument returns the empty document every session starts from
func NewDocument() CVDocument {
	return CVDocument{
		Experiences:      []ExperienceEntry{},
		Education:        []EducationEntry{},
		Languages:        []LanguageEntry{},
		SelectedTemplate: DefaultTemplate,
	}
}

// Clone returns a deep copy that shares no slices with d
func (d CVDocument) Clone() CVDocument {
	out := d
	out.Experiences = make([]ExperienceEntry, len(d.Experiences))
	for i, exp := range d.Experiences {
		exp.Narrative = exp.Narrative.Clone()
		out.Experiences[i] = exp
	}
	out.Education = append(make([]EducationEntry, 0, len(d.Education)), d.Education...)
	out.Languages = append(make([]LanguageEntry, 0, len(d.Languages)), d.Languages...)
	return out
}

// Normalized returns d with nil lists replaced by empty ones
func (d CVDocument) Normalized() CVDocument {
	if d.Experiences == nil {
		d.Experiences = []ExperienceEntry{}
	}
	if d.Education == nil {
		d.Education = []EducationEntry{}
	}
	if d.Languages == nil {
		d.Languages = []LanguageEntry{}
	}
	return d
}

// HasContent reports whether the user typed anything worth previewing
func (d CVDocument) HasContent() bool {
	if d.PersonalData.FullName != "" || d.PersonalData.Email != "" {
		return true
	}
	for _, exp := range d.Experiences {
		if exp.Company != "" || exp.Position != "" {
			return true
		}
	}
	for _, edu := range d.Education {
		if edu.Institution != "" || edu.Degree != "" {
			return true
		}
	}
	return strings.TrimSpace(d.Skills) != ""
}

// SavedCV is a document as stored for its owner
type SavedCV struct {
	Title     string     `json:"title"`
	Document  CVDocument `json:"document"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Profile is the account-level profile of a user, independent of any CV
type Profile struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	Phone     string    `json:"phone"`
	Bio       string    `json:"bio"`
	Location  string    `json:"location"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CVHistoryEntry is an immutable snapshot of a saved document
type CVHistoryEntry struct {
	ID                string     `json:"id"`
	CVID              string     `json:"cv_id"`
	VersionNumber     int        `json:"version_number"`
	Title             string     `json:"title"`
	Document          CVDocument `json:"document"`
	ChangeDescription *string    `json:"change_description"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ParseSkills splits the comma separated skills text into trimmed, non-empty tokens
func ParseSkills(text string) []string {
	skills := []string{}
	for _, token := range strings.Split(text, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			skills = append(skills, token)
		}
	}
	return skills
}

// WithoutExperience returns a new list without the entry with the given id
func WithoutExperience(list []ExperienceEntry, id string) []ExperienceEntry {
	out := make([]ExperienceEntry, 0, len(list))
	for _, exp := range list {
		if exp.ID != id {
			out = append(out, exp)
		}
	}
	return out
}

// WithoutEducation returns a new list without the entry with the given id
func WithoutEducation(list []EducationEntry, id string) []EducationEntry {
	out := make([]EducationEntry, 0, len(list))
	for _, edu := range list {
		if edu.ID != id {
			out = append(out, edu)
		}
	}
	return out
}

// WithoutLanguage returns a new list without the entry with the given id
func WithoutLanguage(list []LanguageEntry, id string) []LanguageEntry {
	out := make([]LanguageEntry, 0, len(list))
	for _, lang := range list {
		if lang.ID != id {
			out = append(out, lang)
		}
	}
	return out
}
