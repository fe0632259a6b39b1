// Package triage implements the action surface of the lead engine: submitting
// leads, running or resuming the pipeline, and the human review verbs. It
// constructs the pipeline runtime from the domain systems and owns the
// write-side HTTP endpoints for leads.
package triage

import (
	"fmt"

	"github.com/inlethq/triage/internal/leads"
)

// ManualClassifyCommand carries a human classification for a lead. Human
// entries have no confidence; the classification is taken as ground truth.
type ManualClassifyCommand struct {
	Classification string `json:"classification"`
	Reasoning      string `json:"reasoning,omitempty"`
}

// Validate checks required manual classification fields.
func (cmd *ManualClassifyCommand) Validate() error {
	if cmd.Classification == "" {
		return fmt.Errorf("%w: classification required", leads.ErrInvalidCommand)
	}
	return nil
}

// RerouteCommand reopens a done lead: source identifies who sent it back,
// target selects review for a human pass or classify for a fresh pipeline
// run.
type RerouteCommand struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
	Target string `json:"target"`
}

// Validate checks required reroute fields and the target status.
func (cmd *RerouteCommand) Validate() error {
	if _, err := leads.ParseRerouteSource(cmd.Source); err != nil {
		return err
	}
	switch leads.Status(cmd.Target) {
	case leads.StatusReview, leads.StatusClassify:
		return nil
	}
	return fmt.Errorf("%w: reroute target must be review or classify", leads.ErrInvalidCommand)
}

// BatchItem is the per-submission outcome of a batch submit. Failed items
// carry the error text; the rest of the batch is unaffected.
type BatchItem struct {
	Lead  *leads.Lead `json:"lead,omitempty"`
	Error string      `json:"error,omitempty"`
}
