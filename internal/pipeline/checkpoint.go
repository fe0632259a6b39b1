package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/inlethq/triage/internal/leads"
)

// conflictRetries bounds how many times a checkpoint reloads and reapplies
// after losing a compare-and-swap race.
const conflictRetries = 3

// checkpoint applies mutate to the lead, advances the stage cursor, and
// persists the lead with a compare-and-swap write. On a version conflict the
// lead is reloaded and the mutation reapplied against fresh state, which may
// legitimately change the outcome: a lead a human moved to done in the
// meantime fails the transition guard and aborts the run. If the fresh lead
// already covers the stage, the reload wins and no second write happens.
func checkpoint(
	ctx context.Context,
	rt *Runtime,
	lead *leads.Lead,
	stage leads.Stage,
	mutate func(*leads.Lead) error,
) (*leads.Lead, error) {
	current := lead

	for attempt := 0; ; attempt++ {
		if attempt > 0 && current.StageDone(stage) {
			return current, nil
		}

		if err := mutate(current); err != nil {
			return nil, err
		}
		current.CompleteStage(stage)

		saved, err := rt.Leads.Save(ctx, current)
		if err == nil {
			return saved, nil
		}

		if !errors.Is(err, leads.ErrVersionConflict) || attempt >= conflictRetries {
			return nil, fmt.Errorf("checkpoint %s: %w", stage, err)
		}

		rt.Logger.WarnContext(ctx, "checkpoint lost write race, reloading lead",
			"id", lead.ID,
			"stage", stage,
		)

		fresh, err := rt.Leads.Find(ctx, lead.ID)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %s: reload: %w", stage, err)
		}
		current = fresh
	}
}
