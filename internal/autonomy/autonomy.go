// Package autonomy implements the auto-action decision policy: given a
// classification, the classifier's confidence, and a settings snapshot, it
// decides whether a lead needs human review or may be acted on by the bot.
// Decide is pure; all randomness comes from the injected Sampler.
package autonomy

import (
	"time"

	"github.com/inlethq/triage/internal/settings"
)

// Actors recorded on autonomous decisions.
const (
	SentByBot = "bot"
)

// Decision is the outcome of evaluating a classification against the
// threshold and rollout policy in force at evaluation time.
type Decision struct {
	NeedsReview      bool       `json:"needs_review"`
	AppliedThreshold float64    `json:"applied_threshold"`
	AutoSend         bool       `json:"auto_send"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	SentBy           string     `json:"sent_by,omitempty"`
}

// Held reports whether the lead passed its threshold but was withheld from
// autonomous action by the rollout policy or the high-value gate. Held leads
// still route to human review.
func (d Decision) Held() bool {
	return !d.NeedsReview && !d.AutoSend
}

// Decide evaluates the autonomy policy for one classification event.
//
// Confidence below the configured threshold always forces review, regardless
// of rollout. Confidence exactly at the threshold passes. Threshold-passing
// leads draw once from the rollout policy; the highest-value classification
// additionally requires the explicit AllowHighValueAutoSend flag. A missing
// threshold is a configuration error, never a default.
func Decide(
	c settings.Classification,
	confidence float64,
	snap *settings.Snapshot,
	draw Sampler,
	now time.Time,
) (Decision, error) {
	threshold, err := snap.Threshold(c)
	if err != nil {
		return Decision{}, err
	}

	if confidence < threshold {
		return Decision{
			NeedsReview:      true,
			AppliedThreshold: threshold,
		}, nil
	}

	candidate := snap.Rollout.Enabled && draw() < snap.Rollout.Percentage

	if c == settings.HighestValue && !snap.AllowHighValueAutoSend {
		candidate = false
	}

	if !candidate {
		return Decision{
			NeedsReview:      false,
			AppliedThreshold: threshold,
		}, nil
	}

	return Decision{
		NeedsReview:      false,
		AppliedThreshold: threshold,
		AutoSend:         true,
		SentAt:           &now,
		SentBy:           SentByBot,
	}, nil
}
