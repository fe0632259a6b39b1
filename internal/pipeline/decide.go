package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/inlethq/triage/internal/autonomy"
	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/settings"
)

// DecideNode returns a state node that evaluates the autonomy policy for the
// recorded classification and routes the lead to done or review. The rollout
// draw is seeded from the lead id and attempt number, so replaying the same
// attempt reproduces the same draw while a rerouted rerun draws fresh.
func DecideNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		lead, err := extractLead(s)
		if err != nil {
			return s, fmt.Errorf("decide: %w", err)
		}

		if lead.StageDone(leads.StageDecide) {
			rt.Logger.InfoContext(ctx, "decide checkpoint found, skipping stage",
				"id", lead.ID,
			)
			s = s.Set(KeyDecision, decisionFromLead(lead))
			return s, nil
		}

		snap, err := extractSnapshot(s)
		if err != nil {
			return s, fmt.Errorf("decide: %w", err)
		}

		// The decision is derived inside the checkpoint, so a lost write race
		// re-evaluates against the fresh lead: a human who classified or
		// resolved it in the meantime wins over the stale bot outcome.
		var decision autonomy.Decision
		saved, err := checkpoint(ctx, rt, lead, leads.StageDecide, func(l *leads.Lead) error {
			d, err := decideFor(l, snap)
			if err != nil {
				return err
			}
			decision = d
			return l.ApplyDecision(decision)
		})
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrDecideFailed, err)
		}

		rt.Logger.InfoContext(ctx, "decide stage complete",
			"id", saved.ID,
			"status", saved.Status,
			"auto_send", decision.AutoSend,
			"held", decision.Held(),
		)

		s = s.Set(KeyLead, saved)
		s = s.Set(KeyDecision, decision)
		return s, nil
	})
}

// decideFor evaluates the autonomy policy against the lead's current ledger
// entry. A human-authored entry always holds for review; autonomy applies to
// bot findings only.
func decideFor(l *leads.Lead, snap *settings.Snapshot) (autonomy.Decision, error) {
	entry := l.Ledger.Current()
	if entry == nil {
		return autonomy.Decision{}, fmt.Errorf("lead %s has no classification to decide", l.ID)
	}

	if entry.Author == leads.AuthorHuman {
		return autonomy.Decision{
			NeedsReview:      true,
			AppliedThreshold: entry.AppliedThreshold,
		}, nil
	}

	return autonomy.Decide(
		entry.Classification,
		entry.Confidence,
		snap,
		autonomy.Seeded(l.ID, l.Attempt),
		time.Now().UTC(),
	)
}

// decisionFromLead reconstructs the decision a prior run persisted, for runs
// resumed after their decide checkpoint. NeedsReview is recomputed from the
// recorded bot entry, so a held lead is not mistaken for one below threshold.
func decisionFromLead(l *leads.Lead) autonomy.Decision {
	d := autonomy.Decision{
		NeedsReview: l.Status == leads.StatusReview,
		SentAt:      l.SentAt,
		SentBy:      l.SentBy,
		AutoSend:    l.Status == leads.StatusDone && l.SentBy == autonomy.SentByBot,
	}

	if e := l.Ledger.Current(); e != nil {
		d.AppliedThreshold = e.AppliedThreshold
		if e.Author == leads.AuthorBot {
			d.NeedsReview = e.Confidence < e.AppliedThreshold
		}
	}

	return d
}
