package leads

import (
	"fmt"
	"time"

	"github.com/inlethq/triage/internal/autonomy"
)

// Actor recorded on sent fields when a human approves a lead.
const SentByHuman = "human"

// RecordEntry appends a classification event to the ledger without moving
// the lead. Valid from classify and review; a done lead must be reopened
// through a reroute first. The pipeline checkpoints the ledger entry at its
// classify stage and applies the routing decision at a later stage.
func (l *Lead) RecordEntry(e Entry) error {
	switch l.Status {
	case StatusClassify, StatusReview:
	default:
		return fmt.Errorf("%w: cannot classify lead in %s status without a reroute", ErrInvalidTransition, l.Status)
	}

	l.Ledger = l.Ledger.Append(e)
	return nil
}

// ApplyDecision moves the lead according to the autonomy decision: done when
// the decision grants auto-send, review otherwise. Requires at least one
// ledger entry; a lead never reaches done without a classification on record.
func (l *Lead) ApplyDecision(d autonomy.Decision) error {
	switch l.Status {
	case StatusClassify, StatusReview:
	default:
		return fmt.Errorf("%w: cannot decide lead in %s status", ErrInvalidTransition, l.Status)
	}

	if l.Ledger.Len() == 0 {
		return fmt.Errorf("%w: cannot decide an unclassified lead", ErrInvalidTransition)
	}

	if d.AutoSend {
		l.Status = StatusDone
		l.Resolution = ResolutionSent
		l.SentAt = d.SentAt
		l.SentBy = d.SentBy
		return nil
	}

	l.Status = StatusReview
	return nil
}

// ApplyClassification appends a classification event and routes the lead in
// one step. Manual classification paths use this; the pipeline splits the two
// halves across its classify and decide checkpoints.
func (l *Lead) ApplyClassification(e Entry, d autonomy.Decision) error {
	if err := l.RecordEntry(e); err != nil {
		return err
	}
	return l.ApplyDecision(d)
}

// Approve marks a reviewed lead as sent by a human. Valid only from review.
func (l *Lead) Approve(at time.Time) error {
	if l.Status != StatusReview {
		return fmt.Errorf("%w: cannot approve lead in %s status", ErrInvalidTransition, l.Status)
	}

	l.Status = StatusDone
	l.Resolution = ResolutionSent
	l.SentAt = &at
	l.SentBy = SentByHuman
	return nil
}

// Reject closes a reviewed lead without sending. Valid only from review.
func (l *Lead) Reject() error {
	if l.Status != StatusReview {
		return fmt.Errorf("%w: cannot reject lead in %s status", ErrInvalidTransition, l.Status)
	}

	l.Status = StatusDone
	l.Resolution = ResolutionClosed
	return nil
}

// Reclassify resets the pipeline cursor on a reviewed lead so a fresh bot run
// can re-evaluate it. The ledger is untouched; the rerun appends its own entry
// and its decision may close the lead straight from review.
func (l *Lead) Reclassify() error {
	if l.Status != StatusReview {
		return fmt.Errorf("%w: cannot reclassify lead in %s status", ErrInvalidTransition, l.Status)
	}

	l.ResetPipeline()
	return nil
}

// Reopen moves a done lead back to review or classify via a reroute record.
// The reroute's original classification and previous terminal state are
// captured here, before the ledger's current classification can change.
// Reopening to classify resets the pipeline cursor for a fresh run.
func (l *Lead) Reopen(source RerouteSource, reason string, target Status, at time.Time) error {
	if l.Status != StatusDone {
		return fmt.Errorf("%w: cannot reroute lead in %s status", ErrInvalidTransition, l.Status)
	}
	if target != StatusReview && target != StatusClassify {
		return fmt.Errorf("%w: invalid reroute target %s", ErrInvalidTransition, target)
	}

	current := l.Ledger.Current()
	if current == nil {
		return fmt.Errorf("%w: done lead has no classification history", ErrInvalidTransition)
	}

	l.Reroute = &Reroute{
		Source:                 source,
		OriginalClassification: current.Classification,
		PreviousTerminalState:  l.Status,
		Reason:                 reason,
		At:                     at,
	}

	l.Status = target
	l.Resolution = ""
	l.SentAt = nil
	l.SentBy = ""

	if target == StatusClassify {
		l.ResetPipeline()
	}

	return nil
}
