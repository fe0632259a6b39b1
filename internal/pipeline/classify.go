package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/inlethq/triage/internal/leads"
)

// ClassifyNode returns a state node that classifies the lead and records the
// bot's ledger entry at its checkpoint. The model's raw classification is
// validated against the snapshot's class set before anything is persisted; an
// unknown class is a contract violation and fails the run without retries.
// A lead resuming past the classify checkpoint reuses its recorded entry, so
// one attempt never produces two bot entries.
func ClassifyNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		lead, err := extractLead(s)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		if lead.StageDone(leads.StageClassify) {
			e := lead.Ledger.Current()
			if e == nil {
				return s, fmt.Errorf("%w: classify checkpoint with empty ledger", ErrClassifyFailed)
			}
			rt.Logger.InfoContext(ctx, "classify checkpoint found, skipping stage",
				"id", lead.ID,
			)
			s = s.Set(KeyEntry, *e)
			return s, nil
		}

		snap, err := extractSnapshot(s)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		report, err := extractReport(s)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		var finding Finding
		err = retryStage(ctx, rt.Retry, func() error {
			f, err := rt.Classifier.Classify(ctx, lead, report)
			if err != nil {
				return err
			}
			finding = f
			return nil
		})
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrClassifyFailed, err)
		}

		class, err := snap.Parse(finding.Classification)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrInvalidFinding, err)
		}

		if finding.Confidence < 0 || finding.Confidence > 1 {
			return s, fmt.Errorf("%w: confidence %v outside [0, 1]", ErrInvalidFinding, finding.Confidence)
		}

		threshold, err := snap.Threshold(class)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrClassifyFailed, err)
		}

		entry := leads.Entry{
			Author:           leads.AuthorBot,
			Classification:   class,
			Confidence:       finding.Confidence,
			Reasoning:        finding.Reasoning,
			AppliedThreshold: threshold,
			At:               time.Now().UTC(),
		}

		saved, err := checkpoint(ctx, rt, lead, leads.StageClassify, func(l *leads.Lead) error {
			return l.RecordEntry(entry)
		})
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrClassifyFailed, err)
		}

		rt.Logger.InfoContext(ctx, "classify stage complete",
			"id", saved.ID,
			"classification", class,
			"confidence", finding.Confidence,
		)

		s = s.Set(KeyLead, saved)
		s = s.Set(KeyEntry, entry)
		return s, nil
	})
}
