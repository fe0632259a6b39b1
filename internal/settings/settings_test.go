package settings_test

import (
	"errors"
	"testing"

	"github.com/inlethq/triage/internal/settings"
)

func snapshot() *settings.Snapshot {
	return &settings.Snapshot{
		Thresholds: map[settings.Classification]float64{
			settings.ClassHighQuality:      0.9,
			settings.ClassLowQuality:       0.75,
			settings.ClassSupport:          0.8,
			settings.ClassExistingCustomer: 0.8,
		},
		Rollout: settings.Rollout{Enabled: true, Percentage: 0.25},
		ResponseEnabled: map[settings.Classification]bool{
			settings.ClassHighQuality:      true,
			settings.ClassSupport:          true,
			settings.ClassExistingCustomer: true,
		},
		Version: 3,
	}
}

func TestSnapshotThreshold(t *testing.T) {
	t.Run("returns configured threshold", func(t *testing.T) {
		got, err := snapshot().Threshold(settings.ClassHighQuality)
		if err != nil {
			t.Fatalf("Threshold error: %v", err)
		}
		if got != 0.9 {
			t.Errorf("Threshold = %v, want 0.9", got)
		}
	})

	t.Run("missing classification fails fast", func(t *testing.T) {
		_, err := snapshot().Threshold(settings.Classification("spam"))
		if !errors.Is(err, settings.ErrThresholdMissing) {
			t.Errorf("Threshold error = %v, want ErrThresholdMissing", err)
		}
	})
}

func TestSnapshotParse(t *testing.T) {
	t.Run("accepts classifications in the set", func(t *testing.T) {
		for _, raw := range []string{"high-quality", "low-quality", "support", "existing-customer"} {
			c, err := snapshot().Parse(raw)
			if err != nil {
				t.Errorf("Parse(%q) error: %v", raw, err)
			}
			if string(c) != raw {
				t.Errorf("Parse(%q) = %q", raw, c)
			}
		}
	})

	t.Run("rejects values outside the set", func(t *testing.T) {
		for _, raw := range []string{"spam", "", "High-Quality"} {
			_, err := snapshot().Parse(raw)
			if !errors.Is(err, settings.ErrUnknownClassification) {
				t.Errorf("Parse(%q) error = %v, want ErrUnknownClassification", raw, err)
			}
		}
	})
}

func TestSnapshotClasses(t *testing.T) {
	classes := snapshot().Classes()

	want := []settings.Classification{
		settings.ClassExistingCustomer,
		settings.ClassHighQuality,
		settings.ClassLowQuality,
		settings.ClassSupport,
	}

	if len(classes) != len(want) {
		t.Fatalf("len(Classes()) = %d, want %d", len(classes), len(want))
	}
	for i, c := range want {
		if classes[i] != c {
			t.Errorf("Classes()[%d] = %q, want %q", i, classes[i], c)
		}
	}
}

func TestSnapshotRequiresResponse(t *testing.T) {
	snap := snapshot()

	if !snap.RequiresResponse(settings.ClassHighQuality) {
		t.Error("RequiresResponse(high-quality) = false, want true")
	}
	if snap.RequiresResponse(settings.ClassLowQuality) {
		t.Error("RequiresResponse(low-quality) = true, want false")
	}
	if snap.RequiresResponse(settings.Classification("spam")) {
		t.Error("RequiresResponse(unknown) = true, want false")
	}
}

func TestUpdateCommandValidate(t *testing.T) {
	valid := func() settings.UpdateCommand {
		return settings.UpdateCommand{
			Thresholds: map[settings.Classification]float64{
				settings.ClassHighQuality: 0.9,
				settings.ClassSupport:     0.8,
			},
			Rollout: settings.Rollout{Enabled: true, Percentage: 0.5},
			ResponseEnabled: map[settings.Classification]bool{
				settings.ClassSupport: true,
			},
		}
	}

	t.Run("valid command passes", func(t *testing.T) {
		cmd := valid()
		if err := cmd.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("boundary thresholds pass", func(t *testing.T) {
		cmd := valid()
		cmd.Thresholds[settings.ClassHighQuality] = 0
		cmd.Thresholds[settings.ClassSupport] = 1
		if err := cmd.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("empty threshold map rejected", func(t *testing.T) {
		cmd := valid()
		cmd.Thresholds = nil
		if err := cmd.Validate(); !errors.Is(err, settings.ErrInvalidSettings) {
			t.Errorf("Validate() = %v, want ErrInvalidSettings", err)
		}
	})

	t.Run("threshold out of range rejected", func(t *testing.T) {
		for _, v := range []float64{-0.1, 1.1} {
			cmd := valid()
			cmd.Thresholds[settings.ClassSupport] = v
			if err := cmd.Validate(); !errors.Is(err, settings.ErrInvalidSettings) {
				t.Errorf("Validate() with threshold %v = %v, want ErrInvalidSettings", v, err)
			}
		}
	})

	t.Run("rollout percentage out of range rejected", func(t *testing.T) {
		for _, v := range []float64{-0.1, 1.5} {
			cmd := valid()
			cmd.Rollout.Percentage = v
			if err := cmd.Validate(); !errors.Is(err, settings.ErrInvalidSettings) {
				t.Errorf("Validate() with percentage %v = %v, want ErrInvalidSettings", v, err)
			}
		}
	})

	t.Run("response flag for unknown classification rejected", func(t *testing.T) {
		cmd := valid()
		cmd.ResponseEnabled[settings.Classification("spam")] = true
		if err := cmd.Validate(); !errors.Is(err, settings.ErrInvalidSettings) {
			t.Errorf("Validate() = %v, want ErrInvalidSettings", err)
		}
	})
}
