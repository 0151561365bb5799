package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Narrative schema versions. Rows written before the version tag existed
// carry the flat shape and are read as NarrativeFlatVersion.
const (
	NarrativeFlatVersion = 1
	NarrativeSTARVersion = 2
)

// FlatNarrative is the problem/solution/impact shape of an experience
type FlatNarrative struct {
	Context    string `json:"context"`
	Problem    string `json:"problem"`
	Activities string `json:"activities_and_technologies"`
	Impact     string `json:"impact"`
}

// Achievement is one situation-task-action-result bullet
type Achievement struct {
	ID               string `json:"id"`
	Situation        string `json:"situation"`
	Task             string `json:"task"`
	Action           string `json:"action"`
	Result           string `json:"result"`
	FinalDescription string `json:"final_description"`
}

// STARNarrative is the structured achievements shape of an experience
type STARNarrative struct {
	Achievements []Achievement `json:"achievements"`
}

// Narrative is the free-form body of an experience entry. At most one of
// Flat and STAR is set; the zero value is an empty narrative.
type Narrative struct {
	Flat *FlatNarrative
	STAR *STARNarrative
}

// NewFlatNarrative wraps a flat narrative
func NewFlatNarrative(n FlatNarrative) Narrative {
	return Narrative{Flat: &n}
}

// NewSTARNarrative wraps a list of achievements
func NewSTARNarrative(achievements ...Achievement) Narrative {
	return Narrative{STAR: &STARNarrative{Achievements: achievements}}
}

// SchemaVersion returns the version tag written for n, 0 when empty
func (n Narrative) SchemaVersion() int {
	switch {
	case n.STAR != nil:
		return NarrativeSTARVersion
	case n.Flat != nil:
		return NarrativeFlatVersion
	}
	return 0
}

// IsZero reports whether the narrative has no body
func (n Narrative) IsZero() bool {
	return n.Flat == nil && n.STAR == nil
}

// Clone returns a copy sharing no memory with n
func (n Narrative) Clone() Narrative {
	var out Narrative
	if n.Flat != nil {
		flat := *n.Flat
		out.Flat = &flat
	}
	if n.STAR != nil {
		star := STARNarrative{}
		if n.STAR.Achievements != nil {
			star.Achievements = append([]Achievement{}, n.STAR.Achievements...)
		}
		out.STAR = &star
	}
	return out
}

type flatWire struct {
	SchemaVersion int `json:"schema_version"`
	FlatNarrative
}

type starWire struct {
	SchemaVersion int `json:"schema_version"`
	STARNarrative
}

// MarshalJSON always writes the schema_version tag
func (n Narrative) MarshalJSON() ([]byte, error) {
	switch {
	case n.STAR != nil:
		return json.Marshal(starWire{SchemaVersion: NarrativeSTARVersion, STARNarrative: *n.STAR})
	case n.Flat != nil:
		return json.Marshal(flatWire{SchemaVersion: NarrativeFlatVersion, FlatNarrative: *n.Flat})
	}
	return []byte("null"), nil
}

// UnmarshalJSON dispatches on schema_version; a missing tag means the flat shape
func (n *Narrative) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Narrative{}
		return nil
	}

	var tag struct {
		SchemaVersion *int `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("decode narrative: %w", err)
	}

	version := NarrativeFlatVersion
	if tag.SchemaVersion != nil {
		version = *tag.SchemaVersion
	}

	switch version {
	case NarrativeFlatVersion:
		var flat FlatNarrative
		if err := json.Unmarshal(data, &flat); err != nil {
			return fmt.Errorf("decode narrative v%d: %w", version, err)
		}
		*n = Narrative{Flat: &flat}
	case NarrativeSTARVersion:
		var star STARNarrative
		if err := json.Unmarshal(data, &star); err != nil {
			return fmt.Errorf("decode narrative v%d: %w", version, err)
		}
		*n = Narrative{STAR: &star}
	default:
		return fmt.Errorf("unsupported narrative schema_version %d", version)
	}
	return nil
}

// legacyExperience holds the fields older clients stored directly on the
// experience object before narratives were versioned.
type legacyExperience struct {
	Context                   string        `json:"context"`
	Problem                   string        `json:"problem"`
	ActivitiesAndTechnologies string        `json:"activitiesAndTechnologies"`
	Impact                    string        `json:"impact"`
	Achievements              []Achievement `json:"achievements"`
}

func (l legacyExperience) narrative() Narrative {
	if len(l.Achievements) > 0 {
		return NewSTARNarrative(l.Achievements...)
	}
	flat := FlatNarrative{
		Context:    l.Context,
		Problem:    l.Problem,
		Activities: l.ActivitiesAndTechnologies,
		Impact:     l.Impact,
	}
	if flat == (FlatNarrative{}) {
		return Narrative{}
	}
	return NewFlatNarrative(flat)
}

// UnmarshalJSON reads both the current shape and rows written by older
// clients, lifting legacy top-level narrative fields into Narrative.
func (e *ExperienceEntry) UnmarshalJSON(data []byte) error {
	type plain ExperienceEntry
	var wire struct {
		plain
		legacyExperience
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = ExperienceEntry(wire.plain)
	if e.Narrative.IsZero() {
		e.Narrative = wire.legacyExperience.narrative()
	}
	return nil
}
