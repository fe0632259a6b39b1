package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/inlethq/triage/internal/leads"
)

// GenerateNode returns a state node that drafts a response for classes the
// settings mark as response-bearing. The draft is persisted on the lead at
// the checkpoint so review and auto-send both read the same content.
func GenerateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		lead, err := extractLead(s)
		if err != nil {
			return s, fmt.Errorf("generate: %w", err)
		}

		if lead.StageDone(leads.StageGenerate) && lead.GeneratedContent != "" {
			rt.Logger.InfoContext(ctx, "generate checkpoint found, skipping stage",
				"id", lead.ID,
			)
			return s, nil
		}

		report, err := extractReport(s)
		if err != nil {
			return s, fmt.Errorf("generate: %w", err)
		}

		entry, err := extractEntry(s)
		if err != nil {
			return s, fmt.Errorf("generate: %w", err)
		}

		matches := extractMatches(s)

		var draft Draft
		err = retryStage(ctx, rt.Retry, func() error {
			d, err := rt.Generator.Generate(ctx, lead, report, entry.Classification, matches)
			if err != nil {
				return err
			}
			draft = d
			return nil
		})
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrGenerateFailed, err)
		}

		saved, err := checkpoint(ctx, rt, lead, leads.StageGenerate, func(l *leads.Lead) error {
			l.GeneratedContent = draft.Body
			return nil
		})
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrGenerateFailed, err)
		}

		rt.Logger.InfoContext(ctx, "generate stage complete", "id", saved.ID)

		s = s.Set(KeyLead, saved)
		return s, nil
	})
}
