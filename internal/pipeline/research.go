package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/inlethq/triage/internal/leads"
)

// ResearchNode returns a state node that produces the research report for a
// lead. A lead resuming past the research checkpoint rebuilds the report from
// its persisted fields instead of re-querying the model.
func ResearchNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		lead, err := extractLead(s)
		if err != nil {
			return s, fmt.Errorf("research: %w", err)
		}

		if lead.StageDone(leads.StageResearch) && lead.Research != "" {
			rt.Logger.InfoContext(ctx, "research checkpoint found, skipping stage",
				"id", lead.ID,
			)
			s = s.Set(KeyReport, Report{Text: lead.Research, Industry: lead.Industry})
			return s, nil
		}

		var report Report
		err = retryStage(ctx, rt.Retry, func() error {
			r, err := rt.Classifier.Research(ctx, lead)
			if err != nil {
				return err
			}
			report = r
			return nil
		})
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrResearchFailed, err)
		}

		saved, err := checkpoint(ctx, rt, lead, leads.StageResearch, func(l *leads.Lead) error {
			l.Research = report.Text
			l.Industry = report.Industry
			return nil
		})
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrResearchFailed, err)
		}

		rt.Logger.InfoContext(ctx, "research stage complete",
			"id", saved.ID,
			"industry", report.Industry,
		)

		s = s.Set(KeyLead, saved)
		s = s.Set(KeyReport, report)
		return s, nil
	})
}
