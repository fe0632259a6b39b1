// Package settings implements the triage configuration domain. It owns the
// closed classification set, per-classification confidence thresholds, the
// autonomy rollout policy, and the versioned snapshot that pipeline runs
// capture once at start and hold fixed for their duration.
package settings

import (
	"fmt"
	"slices"
	"time"
)

// Classification is a category assigned to a lead. The set of valid values is
// defined by the current settings document (the threshold map keys) and is
// closed at any given time; values outside the set are contract violations.
type Classification string

// Canonical classification set seeded by the initial migration.
const (
	ClassHighQuality      Classification = "high-quality"
	ClassLowQuality       Classification = "low-quality"
	ClassSupport          Classification = "support"
	ClassExistingCustomer Classification = "existing-customer"
)

// HighestValue is the classification whose autonomous handling requires an
// explicit opt-in flag on top of threshold and rollout.
const HighestValue = ClassHighQuality

// Rollout controls what fraction of threshold-passing leads are granted
// autonomous action. Percentage is a Bernoulli probability in [0, 1], an
// experiment dial rather than a per-classification correctness estimate.
type Rollout struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage"`
}

// Snapshot is an immutable per-run view of the triage configuration.
// Pipelines read one Snapshot at start; a settings update mid-flight bumps
// Version but never alters decisions already in progress.
type Snapshot struct {
	Thresholds             map[Classification]float64 `json:"thresholds"`
	Rollout                Rollout                    `json:"rollout"`
	ResponseEnabled        map[Classification]bool    `json:"response_enabled"`
	AllowHighValueAutoSend bool                       `json:"allow_high_value_auto_send"`
	ReferenceMatching      bool                       `json:"reference_matching"`
	Version                int64                      `json:"version"`
	CapturedAt             time.Time                  `json:"captured_at"`
}

// Threshold returns the confidence cutoff for a classification. A
// classification absent from the threshold map is a configuration error and
// fails fast rather than defaulting.
func (s *Snapshot) Threshold(c Classification) (float64, error) {
	t, ok := s.Thresholds[c]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrThresholdMissing, c)
	}
	return t, nil
}

// Parse validates a raw classification value against the snapshot's closed set.
func (s *Snapshot) Parse(raw string) (Classification, error) {
	c := Classification(raw)
	if _, ok := s.Thresholds[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownClassification, raw)
	}
	return c, nil
}

// Classes returns the closed classification set in stable order.
func (s *Snapshot) Classes() []Classification {
	classes := make([]Classification, 0, len(s.Thresholds))
	for c := range s.Thresholds {
		classes = append(classes, c)
	}
	slices.Sort(classes)
	return classes
}

// RequiresResponse reports whether the classification's policy calls for a
// personalized generated response.
func (s *Snapshot) RequiresResponse(c Classification) bool {
	return s.ResponseEnabled[c]
}

// UpdateCommand carries a full replacement of the tunable settings fields.
// Applying it bumps the settings version.
type UpdateCommand struct {
	Thresholds             map[Classification]float64 `json:"thresholds"`
	Rollout                Rollout                    `json:"rollout"`
	ResponseEnabled        map[Classification]bool    `json:"response_enabled"`
	AllowHighValueAutoSend bool                       `json:"allow_high_value_auto_send"`
	ReferenceMatching      bool                       `json:"reference_matching"`
}

// Validate checks threshold and rollout bounds before an update is applied.
func (cmd *UpdateCommand) Validate() error {
	if len(cmd.Thresholds) == 0 {
		return fmt.Errorf("%w: empty threshold map", ErrInvalidSettings)
	}
	for c, t := range cmd.Thresholds {
		if t < 0 || t > 1 {
			return fmt.Errorf("%w: threshold for %s out of range: %v", ErrInvalidSettings, c, t)
		}
	}
	if cmd.Rollout.Percentage < 0 || cmd.Rollout.Percentage > 1 {
		return fmt.Errorf("%w: rollout percentage out of range: %v", ErrInvalidSettings, cmd.Rollout.Percentage)
	}
	for c := range cmd.ResponseEnabled {
		if _, ok := cmd.Thresholds[c]; !ok {
			return fmt.Errorf("%w: response flag for unknown classification %s", ErrInvalidSettings, c)
		}
	}
	return nil
}
