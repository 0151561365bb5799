package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/khrees2412/cvbuilder/pkg/models"
)

// Kind selects the prompt used for a field suggestion
type Kind string

const (
	KindRefine       Kind = "refine"
	KindContext      Kind = "context"
	KindProblems     Kind = "problems"
	KindSolutions    Kind = "solutions"
	KindTechnologies Kind = "technologies"
	KindImpact       Kind = "impact"
)

// Kinds lists the kinds with a dedicated prompt
func Kinds() []Kind {
	return []Kind{KindRefine, KindContext, KindProblems, KindSolutions, KindTechnologies, KindImpact}
}

// Request describes the field a suggestion is wanted for
type Request struct {
	Kind        Kind
	Context     any // usually the experience being written
	CurrentText string
}

var ErrNothingToSummarize = errors.New("no experiences to summarize")

const promptPreamble = "You are an assistant specialised in writing professional CVs.\n\n"

const answerOnly = "Reply only with the suggested text, without explanations or additional comments."

// BuildPrompt returns the prompt sent for req
func BuildPrompt(req Request) (string, error) {
	ctxJSON, err := json.MarshalIndent(req.Context, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode suggestion context: %w", err)
	}
	experience := fmt.Sprintf("Professional experience context:\n%s\n\n", ctxJSON)

	switch req.Kind {
	case KindRefine:
		return promptPreamble +
			fmt.Sprintf("Current text to refine: %q\n\n", req.CurrentText) +
			experience +
			"Refine and improve the current text, making it more professional, impactful and suitable for a CV.\n" +
			"Keep the essential information but improve structure, grammar and impact. Be concise.\n" +
			"Reply only with the refined text, without explanations or additional comments.", nil
	case KindContext:
		return promptPreamble + experience +
			"Write a concise, impactful description (at most 2 sentences) of the CONTEXT of the project or role.\n" +
			"Consider the position, the company and the context provided.\n" + answerOnly, nil
	case KindProblems:
		return promptPreamble + experience +
			"Write a concise, impactful description (at most 2 sentences) of the PROBLEM or NEED that existed before this person's work.\n" +
			"If it is a personal project, focus on the need that motivated it.\n" + answerOnly, nil
	case KindSolutions:
		return promptPreamble + experience +
			"Write a concise, impactful description (at most 3 sentences) of the SOLUTION this person implemented.\n" +
			"Use action verbs in the past tense and be specific. Mention relevant technologies where possible.\n" + answerOnly, nil
	case KindTechnologies:
		return promptPreamble + experience +
			"List the technologies, tools, methodologies and frameworks most likely used in this experience.\n" +
			"Format them as a comma separated list without bullets or numbering.\n" + answerOnly, nil
	case KindImpact:
		return promptPreamble + experience +
			"Write a concise, impactful description (at most 2 sentences) of the RESULTS and IMPACT of the solution.\n" +
			"Include quantitative metrics where possible (percentages, amounts, time saved).\n" + answerOnly, nil
	default:
		return experience + fmt.Sprintf("Suggest a text for the step: %s. ", req.Kind) + answerOnly, nil
	}
}

// Suggest asks the provider for a suggestion for one field
func (c *Client) Suggest(ctx context.Context, req Request) (string, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", err
	}
	return c.Complete(ctx, prompt)
}

// ExperienceSummary builds one STAR-style bullet per experience, the text
// used as context when asking for a final summary paragraph.
func ExperienceSummary(experiences []models.ExperienceEntry) string {
	bullets := make([]string, 0, len(experiences))
	for _, exp := range experiences {
		var parts []string
		switch {
		case exp.Position != "" && exp.Company != "":
			parts = append(parts, fmt.Sprintf("As %s at %s,", exp.Position, exp.Company))
		case exp.Position != "":
			parts = append(parts, fmt.Sprintf("As %s,", exp.Position))
		case exp.Company != "":
			parts = append(parts, fmt.Sprintf("At %s,", exp.Company))
		}

		activities, impact := narrativeParts(exp.Narrative)
		if activities != "" {
			parts = append(parts, activities)
		}
		if impact != "" {
			parts = append(parts, "Impact/results: "+impact)
		}
		bullets = append(bullets, "• "+strings.Join(parts, " "))
	}
	return strings.Join(bullets, "\n\n")
}

func narrativeParts(n models.Narrative) (activities, impact string) {
	switch {
	case n.Flat != nil:
		return strings.TrimSpace(n.Flat.Activities), strings.TrimSpace(n.Flat.Impact)
	case n.STAR != nil:
		var actions, results []string
		for _, a := range n.STAR.Achievements {
			if s := strings.TrimSpace(a.Action); s != "" {
				actions = append(actions, s)
			}
			if s := strings.TrimSpace(a.Result); s != "" {
				results = append(results, s)
			}
		}
		return strings.Join(actions, "; "), strings.Join(results, "; ")
	}
	return "", ""
}

// SummarizeExperiences asks the provider for a closing CV paragraph
// written from the experience bullets.
func (c *Client) SummarizeExperiences(ctx context.Context, experiences []models.ExperienceEntry) (string, error) {
	if len(experiences) == 0 {
		return "", ErrNothingToSummarize
	}
	prompt := promptPreamble +
		"From the experience bullets below, write one short professional summary paragraph for a CV.\n\n" +
		ExperienceSummary(experiences) + "\n\n" + answerOnly
	return c.Complete(ctx, prompt)
}
