// Package export renders a CV document to HTML and prints it to PDF.
package export

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/khrees2412/cvbuilder/internal/gateway"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

// PreviewElementID is the id of the element holding the rendered CV
const PreviewElementID = "cv-preview"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type experienceView struct {
	Company         string
	Position        string
	Period          string
	PersonalProject bool
	Highlights      []string
}

type educationView struct {
	Institution string
	Degree      string
	Field       string
	Category    string
	Period      string
}

type languageView struct {
	Language    string
	Proficiency string
}

type pageView struct {
	ElementID    string
	FullName     string
	Photo        template.URL
	Personal     models.PersonalData
	Objective    models.Objective
	HasObjective bool
	Experiences  []experienceView
	Education    []educationView
	Skills       []string
	Languages    []languageView
}

// Render produces a standalone HTML page for doc in its selected template.
// Unknown templates render the empty-state page.
func Render(doc models.CVDocument) ([]byte, error) {
	doc = doc.Normalized()

	name := "empty.html"
	if doc.SelectedTemplate.Valid() {
		name = string(doc.SelectedTemplate) + ".html"
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, newPageView(doc)); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func newPageView(doc models.CVDocument) pageView {
	// Casers keep state between calls and cannot be shared
	title := cases.Title(language.English)

	v := pageView{
		ElementID:    PreviewElementID,
		FullName:     doc.PersonalData.FullName,
		Photo:        photoSource(doc.PersonalData.ProfilePhotoURL),
		Personal:     doc.PersonalData,
		Objective:    doc.Objective,
		HasObjective: !doc.Objective.IsZero(),
		Skills:       models.ParseSkills(doc.Skills),
	}
	if v.FullName == "" {
		v.FullName = "Your Name"
	}

	for _, exp := range doc.Experiences {
		if exp.Company == "" && exp.Position == "" {
			continue
		}
		end := formatMonth(exp.EndDate)
		if exp.Current {
			end = "Present"
		}
		v.Experiences = append(v.Experiences, experienceView{
			Company:         orDefault(exp.Company, "Company"),
			Position:        orDefault(exp.Position, "Position"),
			Period:          period(formatMonth(exp.StartDate), end),
			PersonalProject: exp.IsPersonalProject,
			Highlights:      Highlights(exp.Narrative),
		})
	}

	for _, edu := range doc.Education {
		if edu.Institution == "" && edu.Degree == "" {
			continue
		}
		end := formatMonth(edu.EndDate)
		if edu.InProgress {
			end = "In progress"
		}
		v.Education = append(v.Education, educationView{
			Institution: orDefault(edu.Institution, "Institution"),
			Degree:      orDefault(edu.Degree, "Degree"),
			Field:       edu.Field,
			Category:    title.String(string(edu.Category)),
			Period:      period(formatMonth(edu.StartDate), end),
		})
	}

	for _, lang := range doc.Languages {
		if lang.Language == "" {
			continue
		}
		v.Languages = append(v.Languages, languageView{
			Language:    lang.Language,
			Proficiency: title.String(string(lang.Proficiency)),
		})
	}
	return v
}

// Highlights flattens a narrative into display lines
func Highlights(n models.Narrative) []string {
	var lines []string
	switch {
	case n.Flat != nil:
		for _, part := range []struct{ label, text string }{
			{"Context", n.Flat.Context},
			{"Problem", n.Flat.Problem},
			{"Activities", n.Flat.Activities},
			{"Impact", n.Flat.Impact},
		} {
			if strings.TrimSpace(part.text) != "" {
				lines = append(lines, part.label+": "+strings.TrimSpace(part.text))
			}
		}
	case n.STAR != nil:
		for _, a := range n.STAR.Achievements {
			if text := strings.TrimSpace(a.FinalDescription); text != "" {
				lines = append(lines, text)
				continue
			}
			var parts []string
			for _, s := range []string{a.Situation, a.Task, a.Action, a.Result} {
				if s = strings.TrimSpace(s); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				lines = append(lines, strings.Join(parts, " "))
			}
		}
	}
	return lines
}

// formatMonth turns "2021-03" into "March 2021"; other text is kept as typed
func formatMonth(s string) string {
	if t, err := time.Parse("2006-01", s); err == nil {
		return t.Format("January 2006")
	}
	return s
}

func period(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	case start == "":
		return end
	}
	return start + " - " + end
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ValidateForExport checks the fields a printable CV needs
func ValidateForExport(doc models.CVDocument) error {
	var errs []error
	if strings.TrimSpace(doc.PersonalData.FullName) == "" {
		errs = append(errs, &gateway.ValidationError{Field: "full_name", Message: "full name is required"})
	}
	if strings.TrimSpace(doc.PersonalData.Email) == "" {
		errs = append(errs, &gateway.ValidationError{Field: "email", Message: "email is required"})
	}
	if doc.SelectedTemplate == "" {
		errs = append(errs, &gateway.ValidationError{Field: "selected_design", Message: "select a template"})
	}
	return errors.Join(errs...)
}

// FileName is the default export name for doc, without extension
func FileName(doc models.CVDocument) string {
	name := strings.TrimSpace(doc.PersonalData.FullName)
	if name == "" {
		return "CV"
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '-'
		}
		return r
	}, name)
	return "CV - " + name
}
