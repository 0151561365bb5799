package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/khrees2412/cvbuilder/internal/database"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

// encodeRow fills the document columns of a cvs row
func encodeRow(row *database.CVRow, doc models.CVDocument) error {
	doc = doc.Normalized()
	fields := []struct {
		dst *json.RawMessage
		src any
	}{
		{&row.PersonalData, doc.PersonalData},
		{&row.Objective, doc.Objective},
		{&row.Experiences, doc.Experiences},
		{&row.Education, doc.Education},
		{&row.Languages, doc.Languages},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.src)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		*f.dst = data
	}
	row.Skills = doc.Skills
	row.SelectedDesign = string(doc.SelectedTemplate)
	return nil
}

func decodeDocument(id string, personal, objective, experiences, education, languages json.RawMessage, skills, design string) (models.CVDocument, error) {
	doc := models.NewDocument()
	doc.ID = id
	doc.Skills = skills
	doc.SelectedTemplate = models.TemplateID(design)

	fields := []struct {
		name string
		src  json.RawMessage
		dst  any
	}{
		{"personal_data", personal, &doc.PersonalData},
		{"objective", objective, &doc.Objective},
		{"experiences", experiences, &doc.Experiences},
		{"education", education, &doc.Education},
		{"languages", languages, &doc.Languages},
	}
	for _, f := range fields {
		if len(f.src) == 0 {
			continue
		}
		if err := json.Unmarshal(f.src, f.dst); err != nil {
			return models.CVDocument{}, fmt.Errorf("decode %s of cv %s: %w", f.name, id, err)
		}
	}
	return doc.Normalized(), nil
}

// DecodeRow turns a stored cvs row back into a saved document
func DecodeRow(row database.CVRow) (models.SavedCV, error) {
	doc, err := decodeDocument(row.ID, row.PersonalData, row.Objective, row.Experiences,
		row.Education, row.Languages, row.Skills, row.SelectedDesign)
	if err != nil {
		return models.SavedCV{}, err
	}
	return models.SavedCV{
		Title:     row.Title,
		Document:  doc,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// DecodeHistoryRow turns a cv_history row into a history entry whose
// document carries the cv identity.
func DecodeHistoryRow(row database.HistoryRow) (models.CVHistoryEntry, error) {
	doc, err := decodeDocument(row.CVID, row.PersonalData, row.Objective, row.Experiences,
		row.Education, row.Languages, row.Skills, row.SelectedDesign)
	if err != nil {
		return models.CVHistoryEntry{}, err
	}
	return models.CVHistoryEntry{
		ID:                row.ID,
		CVID:              row.CVID,
		VersionNumber:     row.VersionNumber,
		Title:             row.Title,
		Document:          doc,
		ChangeDescription: row.ChangeDescription,
		CreatedAt:         row.CreatedAt,
	}, nil
}
