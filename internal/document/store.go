// Package document holds the in-memory CV being edited and the mutation API
// the CLI and HTTP layers use to change it.
package document

import (
	"sync"

	"github.com/google/uuid"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

// PersonalDataPatch is a partial update of models.PersonalData; nil fields are kept
type PersonalDataPatch struct {
	FullName        *string
	Email           *string
	Phone           *string
	Address         *string
	LinkedIn        *string
	GitHub          *string
	Portfolio       *string
	ProfilePhotoURL *string
}

// ObjectivePatch is a partial update of models.Objective; nil fields are kept
type ObjectivePatch struct {
	Position *string
	Stack    *string
	Goal     *string
}

// Store owns the current CVDocument. Every mutation replaces the document
// with a new value, so snapshots handed out earlier never change.
type Store struct {
	mu          sync.RWMutex
	doc         models.CVDocument
	subscribers map[int]func(models.CVDocument)
	nextSubID   int
}

// New returns a store holding an empty document
func New() *Store {
	return NewFrom(models.NewDocument())
}

// NewFrom returns a store holding a copy of doc
func NewFrom(doc models.CVDocument) *Store {
	return &Store{
		doc:         sanitize(doc),
		subscribers: make(map[int]func(models.CVDocument)),
	}
}

// NewEntryID returns a fresh identifier for a list entry
func NewEntryID() string {
	return uuid.NewString()
}

// Snapshot returns a copy of the current document
func (s *Store) Snapshot() models.CVDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Subscribe registers fn to be called with the new document after each
// mutation. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(models.CVDocument)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// SetPersonalData merges the non-nil patch fields into the personal data
func (s *Store) SetPersonalData(patch PersonalDataPatch) {
	s.update(func(doc *models.CVDocument) {
		p := &doc.PersonalData
		merge(&p.FullName, patch.FullName)
		merge(&p.Email, patch.Email)
		merge(&p.Phone, patch.Phone)
		merge(&p.Address, patch.Address)
		merge(&p.LinkedIn, patch.LinkedIn)
		merge(&p.GitHub, patch.GitHub)
		merge(&p.Portfolio, patch.Portfolio)
		merge(&p.ProfilePhotoURL, patch.ProfilePhotoURL)
	})
}

// SetObjective merges the non-nil patch fields into the objective
func (s *Store) SetObjective(patch ObjectivePatch) {
	s.update(func(doc *models.CVDocument) {
		merge(&doc.Objective.Position, patch.Position)
		merge(&doc.Objective.Stack, patch.Stack)
		merge(&doc.Objective.Goal, patch.Goal)
	})
}

// SetExperiences replaces the experience list
func (s *Store) SetExperiences(list []models.ExperienceEntry) {
	s.update(func(doc *models.CVDocument) {
		doc.Experiences = list
	})
}

// SetEducation replaces the education list
func (s *Store) SetEducation(list []models.EducationEntry) {
	s.update(func(doc *models.CVDocument) {
		doc.Education = list
	})
}

// SetLanguages replaces the language list
func (s *Store) SetLanguages(list []models.LanguageEntry) {
	s.update(func(doc *models.CVDocument) {
		doc.Languages = list
	})
}

// SetSkills replaces the skills text
func (s *Store) SetSkills(text string) {
	s.update(func(doc *models.CVDocument) {
		doc.Skills = text
	})
}

// SetSelectedTemplate replaces the template id. Unknown ids are accepted
// here and degrade to an empty-state render.
func (s *Store) SetSelectedTemplate(id models.TemplateID) {
	s.update(func(doc *models.CVDocument) {
		doc.SelectedTemplate = id
	})
}

// SetID records the identity assigned by the first successful save
func (s *Store) SetID(id string) {
	s.update(func(doc *models.CVDocument) {
		doc.ID = id
	})
}

// Load replaces the whole document, identity included
func (s *Store) Load(doc models.CVDocument) {
	s.update(func(cur *models.CVDocument) {
		*cur = doc
	})
}

// Reset restores the empty document and clears identity
func (s *Store) Reset() {
	s.Load(models.NewDocument())
}

func (s *Store) update(mutate func(doc *models.CVDocument)) {
	s.mu.Lock()
	next := s.doc.Clone()
	mutate(&next)
	next = sanitize(next)
	s.doc = next

	subs := make([]func(models.CVDocument), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next.Clone())
	}
}

func merge(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// sanitize copies every list away from caller-owned memory and repairs
// missing or repeated entry ids.
func sanitize(doc models.CVDocument) models.CVDocument {
	doc = doc.Normalized().Clone()

	seen := make(map[string]bool, len(doc.Experiences))
	for i := range doc.Experiences {
		doc.Experiences[i].ID = uniqueID(doc.Experiences[i].ID, seen)
	}
	seen = make(map[string]bool, len(doc.Education))
	for i := range doc.Education {
		doc.Education[i].ID = uniqueID(doc.Education[i].ID, seen)
	}
	seen = make(map[string]bool, len(doc.Languages))
	for i := range doc.Languages {
		doc.Languages[i].ID = uniqueID(doc.Languages[i].ID, seen)
	}
	return doc
}

func uniqueID(id string, seen map[string]bool) string {
	for id == "" || seen[id] {
		id = NewEntryID()
	}
	seen[id] = true
	return id
}
