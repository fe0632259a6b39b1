package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/inlethq/triage/internal/leads"
)

// MatchNode returns a state node that looks up reference materials for the
// lead's industry. Matching is best effort: a lookup failure logs and leaves
// the match set empty rather than failing the run. The query is idempotent,
// so a resumed run simply re-matches.
func MatchNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		lead, err := extractLead(s)
		if err != nil {
			return s, fmt.Errorf("match: %w", err)
		}

		report, err := extractReport(s)
		if err != nil {
			return s, fmt.Errorf("match: %w", err)
		}

		matches, err := rt.References.Match(ctx, report.Industry)
		if err != nil {
			rt.Logger.WarnContext(ctx, "reference matching failed, continuing without matches",
				"id", lead.ID,
				"industry", report.Industry,
				"error", err,
			)
			matches = nil
		}

		ids := make([]uuid.UUID, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}

		saved, err := checkpoint(ctx, rt, lead, leads.StageMatch, func(l *leads.Lead) error {
			l.MatchedReferences = ids
			return nil
		})
		if err != nil {
			return s, fmt.Errorf("match: %w", err)
		}

		rt.Logger.InfoContext(ctx, "match stage complete",
			"id", saved.ID,
			"matched", len(matches),
		)

		s = s.Set(KeyLead, saved)
		s = s.Set(KeyMatches, matches)
		return s, nil
	})
}
