package leads_test

import (
	"errors"
	"testing"
	"time"

	"github.com/inlethq/triage/internal/autonomy"
	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/settings"
)

func newLead(t *testing.T) *leads.Lead {
	t.Helper()
	return leads.NewLead(leads.SubmitCommand{
		Name:    "Ada",
		Email:   "ada@example.com",
		Company: "Example Corp",
		Message: "Interested in your platform.",
	}, time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
}

func reviewDecision() autonomy.Decision {
	return autonomy.Decision{NeedsReview: true, AppliedThreshold: 0.8}
}

func autoSendDecision(at time.Time) autonomy.Decision {
	return autonomy.Decision{
		AppliedThreshold: 0.8,
		AutoSend:         true,
		SentAt:           &at,
		SentBy:           autonomy.SentByBot,
	}
}

func TestRecordEntry(t *testing.T) {
	t.Run("appends from classify", func(t *testing.T) {
		l := newLead(t)
		if err := l.RecordEntry(botEntry(settings.ClassSupport, 0.85)); err != nil {
			t.Fatalf("RecordEntry error: %v", err)
		}
		if l.Ledger.Len() != 1 {
			t.Errorf("Ledger.Len() = %d, want 1", l.Ledger.Len())
		}
		if l.Status != leads.StatusClassify {
			t.Errorf("Status = %q, want classify (record does not move the lead)", l.Status)
		}
	})

	t.Run("appends from review", func(t *testing.T) {
		l := newLead(t)
		l.Status = leads.StatusReview

		if err := l.RecordEntry(humanEntry(settings.ClassHighQuality)); err != nil {
			t.Fatalf("RecordEntry error: %v", err)
		}
	})

	t.Run("rejected on done lead", func(t *testing.T) {
		l := newLead(t)
		l.Status = leads.StatusDone

		err := l.RecordEntry(botEntry(settings.ClassSupport, 0.85))
		if !errors.Is(err, leads.ErrInvalidTransition) {
			t.Errorf("RecordEntry error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestApplyDecision(t *testing.T) {
	sentAt := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	t.Run("auto-send closes the lead as sent", func(t *testing.T) {
		l := newLead(t)
		if err := l.RecordEntry(botEntry(settings.ClassSupport, 0.95)); err != nil {
			t.Fatalf("RecordEntry error: %v", err)
		}

		if err := l.ApplyDecision(autoSendDecision(sentAt)); err != nil {
			t.Fatalf("ApplyDecision error: %v", err)
		}

		if l.Status != leads.StatusDone {
			t.Errorf("Status = %q, want done", l.Status)
		}
		if l.Resolution != leads.ResolutionSent {
			t.Errorf("Resolution = %q, want sent", l.Resolution)
		}
		if l.SentBy != autonomy.SentByBot {
			t.Errorf("SentBy = %q, want bot", l.SentBy)
		}
		if l.SentAt == nil || !l.SentAt.Equal(sentAt) {
			t.Errorf("SentAt = %v, want %v", l.SentAt, sentAt)
		}
	})

	t.Run("review decision routes to review", func(t *testing.T) {
		l := newLead(t)
		if err := l.RecordEntry(botEntry(settings.ClassSupport, 0.7)); err != nil {
			t.Fatalf("RecordEntry error: %v", err)
		}

		if err := l.ApplyDecision(reviewDecision()); err != nil {
			t.Fatalf("ApplyDecision error: %v", err)
		}

		if l.Status != leads.StatusReview {
			t.Errorf("Status = %q, want review", l.Status)
		}
		if l.SentBy != "" {
			t.Errorf("SentBy = %q, want empty", l.SentBy)
		}
	})

	t.Run("rejected on unclassified lead", func(t *testing.T) {
		l := newLead(t)

		err := l.ApplyDecision(reviewDecision())
		if !errors.Is(err, leads.ErrInvalidTransition) {
			t.Errorf("ApplyDecision error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("rejected on done lead", func(t *testing.T) {
		l := newLead(t)
		l.Status = leads.StatusDone
		l.Ledger = l.Ledger.Append(botEntry(settings.ClassSupport, 0.95))

		err := l.ApplyDecision(autoSendDecision(sentAt))
		if !errors.Is(err, leads.ErrInvalidTransition) {
			t.Errorf("ApplyDecision error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestApplyClassification(t *testing.T) {
	t.Run("records and routes in one step", func(t *testing.T) {
		l := newLead(t)

		err := l.ApplyClassification(humanEntry(settings.ClassHighQuality), reviewDecision())
		if err != nil {
			t.Fatalf("ApplyClassification error: %v", err)
		}

		if l.Ledger.Len() != 1 {
			t.Errorf("Ledger.Len() = %d, want 1", l.Ledger.Len())
		}
		if l.Status != leads.StatusReview {
			t.Errorf("Status = %q, want review", l.Status)
		}
	})
}

func TestApprove(t *testing.T) {
	at := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)

	t.Run("sends a reviewed lead", func(t *testing.T) {
		l := newLead(t)
		l.Status = leads.StatusReview

		if err := l.Approve(at); err != nil {
			t.Fatalf("Approve error: %v", err)
		}

		if l.Status != leads.StatusDone {
			t.Errorf("Status = %q, want done", l.Status)
		}
		if l.Resolution != leads.ResolutionSent {
			t.Errorf("Resolution = %q, want sent", l.Resolution)
		}
		if l.SentBy != leads.SentByHuman {
			t.Errorf("SentBy = %q, want human", l.SentBy)
		}
	})

	t.Run("rejected outside review", func(t *testing.T) {
		l := newLead(t)
		err := l.Approve(at)
		if !errors.Is(err, leads.ErrInvalidTransition) {
			t.Errorf("Approve error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestReject(t *testing.T) {
	t.Run("closes a reviewed lead without sending", func(t *testing.T) {
		l := newLead(t)
		l.Status = leads.StatusReview

		if err := l.Reject(); err != nil {
			t.Fatalf("Reject error: %v", err)
		}

		if l.Status != leads.StatusDone {
			t.Errorf("Status = %q, want done", l.Status)
		}
		if l.Resolution != leads.ResolutionClosed {
			t.Errorf("Resolution = %q, want closed", l.Resolution)
		}
		if l.SentAt != nil {
			t.Errorf("SentAt = %v, want nil", l.SentAt)
		}
	})

	t.Run("rejected outside review", func(t *testing.T) {
		l := newLead(t)
		err := l.Reject()
		if !errors.Is(err, leads.ErrInvalidTransition) {
			t.Errorf("Reject error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestReopen(t *testing.T) {
	at := time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC)

	doneLead := func(t *testing.T) *leads.Lead {
		t.Helper()
		l := newLead(t)
		if err := l.RecordEntry(botEntry(settings.ClassSupport, 0.95)); err != nil {
			t.Fatalf("RecordEntry error: %v", err)
		}
		if err := l.ApplyDecision(autoSendDecision(at)); err != nil {
			t.Fatalf("ApplyDecision error: %v", err)
		}
		return l
	}

	t.Run("reopen to review captures the reroute record", func(t *testing.T) {
		l := doneLead(t)

		err := l.Reopen(leads.SourceCustomer, "customer replied with a support issue", leads.StatusReview, at)
		if err != nil {
			t.Fatalf("Reopen error: %v", err)
		}

		if l.Status != leads.StatusReview {
			t.Errorf("Status = %q, want review", l.Status)
		}
		if l.Reroute == nil {
			t.Fatal("Reroute = nil")
		}
		if l.Reroute.OriginalClassification != settings.ClassSupport {
			t.Errorf("OriginalClassification = %q, want support", l.Reroute.OriginalClassification)
		}
		if l.Reroute.PreviousTerminalState != leads.StatusDone {
			t.Errorf("PreviousTerminalState = %q, want done", l.Reroute.PreviousTerminalState)
		}
		if l.Resolution != "" {
			t.Errorf("Resolution = %q, want cleared", l.Resolution)
		}
		if l.SentAt != nil || l.SentBy != "" {
			t.Error("sent fields should be cleared on reopen")
		}
	})

	t.Run("reopen to classify resets the pipeline", func(t *testing.T) {
		l := doneLead(t)
		l.Stage = leads.StageDecide
		attempt := l.Attempt

		err := l.Reopen(leads.SourceSales, "wrong routing", leads.StatusClassify, at)
		if err != nil {
			t.Fatalf("Reopen error: %v", err)
		}

		if l.Status != leads.StatusClassify {
			t.Errorf("Status = %q, want classify", l.Status)
		}
		if l.Stage != leads.StageNone {
			t.Errorf("Stage = %q, want cleared", l.Stage)
		}
		if l.Attempt != attempt+1 {
			t.Errorf("Attempt = %d, want %d", l.Attempt, attempt+1)
		}
	})

	t.Run("reopen to review keeps the pipeline cursor", func(t *testing.T) {
		l := doneLead(t)
		l.Stage = leads.StageDecide
		attempt := l.Attempt

		if err := l.Reopen(leads.SourceSupport, "needs a second look", leads.StatusReview, at); err != nil {
			t.Fatalf("Reopen error: %v", err)
		}

		if l.Attempt != attempt {
			t.Errorf("Attempt = %d, want %d", l.Attempt, attempt)
		}
	})

	t.Run("rejected on non-done lead", func(t *testing.T) {
		l := newLead(t)
		err := l.Reopen(leads.SourceCustomer, "reason", leads.StatusReview, at)
		if !errors.Is(err, leads.ErrInvalidTransition) {
			t.Errorf("Reopen error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("rejected with invalid target", func(t *testing.T) {
		l := doneLead(t)
		err := l.Reopen(leads.SourceCustomer, "reason", leads.StatusDone, at)
		if !errors.Is(err, leads.ErrInvalidTransition) {
			t.Errorf("Reopen error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("later reroute replaces the marker", func(t *testing.T) {
		l := doneLead(t)
		if err := l.Reopen(leads.SourceCustomer, "first", leads.StatusReview, at); err != nil {
			t.Fatalf("first Reopen error: %v", err)
		}
		if err := l.Reject(); err != nil {
			t.Fatalf("Reject error: %v", err)
		}

		later := at.Add(24 * time.Hour)
		if err := l.Reopen(leads.SourceSales, "second", leads.StatusReview, later); err != nil {
			t.Fatalf("second Reopen error: %v", err)
		}

		if l.Reroute.Source != leads.SourceSales {
			t.Errorf("Source = %q, want sales", l.Reroute.Source)
		}
		if l.Reroute.Reason != "second" {
			t.Errorf("Reason = %q, want second", l.Reroute.Reason)
		}
	})
}

func TestReclassify(t *testing.T) {
	t.Run("review resets the cursor for a fresh run", func(t *testing.T) {
		l := newLead(t)
		if err := l.RecordEntry(botEntry(settings.ClassSupport, 0.5)); err != nil {
			t.Fatalf("RecordEntry error: %v", err)
		}
		if err := l.ApplyDecision(reviewDecision()); err != nil {
			t.Fatalf("ApplyDecision error: %v", err)
		}
		l.CompleteStage(leads.StageDecide)

		if err := l.Reclassify(); err != nil {
			t.Fatalf("Reclassify error: %v", err)
		}

		if l.Status != leads.StatusReview {
			t.Errorf("Status = %q, want review", l.Status)
		}
		if l.StageDone(leads.StageResearch) {
			t.Error("stage cursor not reset")
		}
		if l.Attempt != 1 {
			t.Errorf("Attempt = %d, want 1", l.Attempt)
		}
		if l.Ledger.Len() != 1 {
			t.Errorf("Ledger.Len() = %d, want 1 (ledger untouched)", l.Ledger.Len())
		}
	})

	t.Run("rejected from classify", func(t *testing.T) {
		l := newLead(t)

		err := l.Reclassify()
		if !errors.Is(err, leads.ErrInvalidTransition) {
			t.Errorf("Reclassify error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("rejected from done", func(t *testing.T) {
		l := newLead(t)
		at := time.Now().UTC()
		if err := l.RecordEntry(botEntry(settings.ClassSupport, 0.95)); err != nil {
			t.Fatalf("RecordEntry error: %v", err)
		}
		if err := l.ApplyDecision(autoSendDecision(at)); err != nil {
			t.Fatalf("ApplyDecision error: %v", err)
		}

		err := l.Reclassify()
		if !errors.Is(err, leads.ErrInvalidTransition) {
			t.Errorf("Reclassify error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestStageCursor(t *testing.T) {
	t.Run("fresh lead has no completed stages", func(t *testing.T) {
		l := newLead(t)
		for _, s := range []leads.Stage{leads.StageResearch, leads.StageMatch, leads.StageClassify, leads.StageGenerate, leads.StageDecide} {
			if l.StageDone(s) {
				t.Errorf("StageDone(%q) = true on fresh lead", s)
			}
		}
	})

	t.Run("cursor covers earlier stages", func(t *testing.T) {
		l := newLead(t)
		l.CompleteStage(leads.StageClassify)

		if !l.StageDone(leads.StageResearch) {
			t.Error("StageDone(research) = false, want true")
		}
		if !l.StageDone(leads.StageClassify) {
			t.Error("StageDone(classify) = false, want true")
		}
		if l.StageDone(leads.StageGenerate) {
			t.Error("StageDone(generate) = true, want false")
		}
	})

	t.Run("cursor never moves backward", func(t *testing.T) {
		l := newLead(t)
		l.CompleteStage(leads.StageGenerate)
		l.CompleteStage(leads.StageResearch)

		if l.Stage != leads.StageGenerate {
			t.Errorf("Stage = %q, want generate", l.Stage)
		}
	})

	t.Run("reset clears the cursor and bumps the attempt", func(t *testing.T) {
		l := newLead(t)
		l.CompleteStage(leads.StageDecide)

		l.ResetPipeline()

		if l.Stage != leads.StageNone {
			t.Errorf("Stage = %q, want cleared", l.Stage)
		}
		if l.Attempt != 2 {
			t.Errorf("Attempt = %d, want 2", l.Attempt)
		}
	})
}

func TestSubmitCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     leads.SubmitCommand
		wantErr bool
	}{
		{"valid", leads.SubmitCommand{Email: "a@b.com", Message: "hi"}, false},
		{"missing email", leads.SubmitCommand{Message: "hi"}, true},
		{"missing message", leads.SubmitCommand{Email: "a@b.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr && !errors.Is(err, leads.ErrInvalidCommand) {
				t.Errorf("Validate() = %v, want ErrInvalidCommand", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
