package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/pipeline"
	"github.com/inlethq/triage/internal/prompts"
	"github.com/inlethq/triage/internal/references"
	"github.com/inlethq/triage/internal/settings"
)

// composePrompt builds a stage prompt by combining tunable instructions, the
// immutable output specification, and the stage's input payload serialized as
// JSON.
func composePrompt(
	ctx context.Context,
	ps prompts.System,
	stage prompts.Stage,
	payload any,
) (string, error) {
	instructions, err := ps.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := ps.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	payloadJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize %s payload: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)
	sb.WriteString("\n\nInput:\n\n")
	sb.Write(payloadJSON)

	return sb.String(), nil
}

type matchedReference struct {
	Title    string `json:"title"`
	Industry string `json:"industry"`
	Summary  string `json:"summary"`
}

func researchPayload(lead *leads.Lead) any {
	return struct {
		Submission leads.Submission `json:"submission"`
	}{
		Submission: lead.Submission,
	}
}

func classifyPayload(lead *leads.Lead, report pipeline.Report) any {
	return struct {
		Submission leads.Submission `json:"submission"`
		Research   string           `json:"research"`
		Industry   string           `json:"industry,omitempty"`
	}{
		Submission: lead.Submission,
		Research:   report.Text,
		Industry:   report.Industry,
	}
}

func generatePayload(
	lead *leads.Lead,
	report pipeline.Report,
	class settings.Classification,
	matches []references.Reference,
) any {
	refs := make([]matchedReference, len(matches))
	for i, m := range matches {
		refs[i] = matchedReference{
			Title:    m.Title,
			Industry: m.Industry,
			Summary:  m.Summary,
		}
	}

	return struct {
		Submission     leads.Submission   `json:"submission"`
		Research       string             `json:"research"`
		Classification string             `json:"classification"`
		References     []matchedReference `json:"references,omitempty"`
	}{
		Submission:     lead.Submission,
		Research:       report.Text,
		Classification: string(class),
		References:     refs,
	}
}
