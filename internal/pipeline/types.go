// Package pipeline implements the staged triage run for a single lead:
// research, reference matching, classification, response generation, and the
// autonomy decision. Each stage persists its output and advances the lead's
// checkpoint cursor before the next stage begins, so a crashed run resumes
// from the last completed stage instead of repeating work.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/inlethq/triage/internal/autonomy"
	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/references"
	"github.com/inlethq/triage/internal/settings"
)

// State keys used to pass values between pipeline nodes.
const (
	KeyLead     = "lead"
	KeySnapshot = "snapshot"
	KeyReport   = "report"
	KeyEntry    = "entry"
	KeyMatches  = "matches"
	KeyDecision = "decision"
)

// Report is the research stage output: a prose summary of the lead's company
// and inquiry, plus an optional industry tag that drives reference matching.
type Report struct {
	Text     string `json:"text"`
	Industry string `json:"industry,omitempty"`
}

// Finding is the classification stage output. Classification is raw model
// output; the pipeline validates it against the configured class set before
// recording a ledger entry.
type Finding struct {
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

// Draft is the generation stage output.
type Draft struct {
	Body string `json:"body"`
}

// Classifier produces the research report and the classification finding for
// a lead. Implementations wrap the language model agent.
type Classifier interface {
	Research(ctx context.Context, lead *leads.Lead) (Report, error)
	Classify(ctx context.Context, lead *leads.Lead, report Report) (Finding, error)
}

// Generator drafts a response for a classified lead, grounded on the research
// report and any matched reference materials.
type Generator interface {
	Generate(
		ctx context.Context,
		lead *leads.Lead,
		report Report,
		class settings.Classification,
		matches []references.Reference,
	) (Draft, error)
}

// Result is the outcome of a completed pipeline run.
type Result struct {
	Lead        *leads.Lead       `json:"lead"`
	Decision    autonomy.Decision `json:"decision"`
	CompletedAt time.Time         `json:"completed_at"`
}

func extractLead(s state.State) (*leads.Lead, error) {
	val, ok := s.Get(KeyLead)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyLead)
	}

	lead, ok := val.(*leads.Lead)
	if !ok {
		return nil, fmt.Errorf("%s is not *leads.Lead", KeyLead)
	}

	return lead, nil
}

func extractSnapshot(s state.State) (*settings.Snapshot, error) {
	val, ok := s.Get(KeySnapshot)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeySnapshot)
	}

	snap, ok := val.(*settings.Snapshot)
	if !ok {
		return nil, fmt.Errorf("%s is not *settings.Snapshot", KeySnapshot)
	}

	return snap, nil
}

func extractReport(s state.State) (Report, error) {
	val, ok := s.Get(KeyReport)
	if !ok {
		return Report{}, fmt.Errorf("missing %s in state", KeyReport)
	}

	report, ok := val.(Report)
	if !ok {
		return Report{}, fmt.Errorf("%s is not Report", KeyReport)
	}

	return report, nil
}

func extractEntry(s state.State) (leads.Entry, error) {
	val, ok := s.Get(KeyEntry)
	if !ok {
		return leads.Entry{}, fmt.Errorf("missing %s in state", KeyEntry)
	}

	entry, ok := val.(leads.Entry)
	if !ok {
		return leads.Entry{}, fmt.Errorf("%s is not leads.Entry", KeyEntry)
	}

	return entry, nil
}

func extractMatches(s state.State) []references.Reference {
	val, ok := s.Get(KeyMatches)
	if !ok {
		return nil
	}

	matches, ok := val.([]references.Reference)
	if !ok {
		return nil
	}

	return matches
}
