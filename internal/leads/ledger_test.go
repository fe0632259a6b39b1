package leads_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/settings"
)

func botEntry(c settings.Classification, confidence float64) leads.Entry {
	return leads.Entry{
		Author:           leads.AuthorBot,
		Classification:   c,
		Confidence:       confidence,
		Reasoning:        "signal match",
		AppliedThreshold: 0.8,
		At:               time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func humanEntry(c settings.Classification) leads.Entry {
	return leads.Entry{
		Author:           leads.AuthorHuman,
		Classification:   c,
		AppliedThreshold: 0.8,
		At:               time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC),
	}
}

func TestLedgerAppend(t *testing.T) {
	t.Run("append preserves order", func(t *testing.T) {
		var l leads.Ledger
		l = l.Append(botEntry(settings.ClassSupport, 0.85))
		l = l.Append(humanEntry(settings.ClassHighQuality))

		entries := l.Entries()
		if len(entries) != 2 {
			t.Fatalf("len = %d, want 2", len(entries))
		}
		if entries[0].Author != leads.AuthorBot {
			t.Errorf("entries[0].Author = %q, want bot", entries[0].Author)
		}
		if entries[1].Author != leads.AuthorHuman {
			t.Errorf("entries[1].Author = %q, want human", entries[1].Author)
		}
	})

	t.Run("append leaves the receiver unchanged", func(t *testing.T) {
		base := leads.NewLedger([]leads.Entry{botEntry(settings.ClassSupport, 0.85)})
		grown := base.Append(humanEntry(settings.ClassHighQuality))

		if base.Len() != 1 {
			t.Errorf("base.Len() = %d, want 1", base.Len())
		}
		if grown.Len() != 2 {
			t.Errorf("grown.Len() = %d, want 2", grown.Len())
		}
	})

	t.Run("entries returns a copy", func(t *testing.T) {
		l := leads.NewLedger([]leads.Entry{botEntry(settings.ClassSupport, 0.85)})

		entries := l.Entries()
		entries[0].Classification = settings.ClassLowQuality

		if got := l.Current().Classification; got != settings.ClassSupport {
			t.Errorf("Current().Classification = %q, want support", got)
		}
	})
}

func TestLedgerCurrent(t *testing.T) {
	t.Run("empty ledger has no current entry", func(t *testing.T) {
		var l leads.Ledger
		if l.Current() != nil {
			t.Error("Current() != nil for empty ledger")
		}
	})

	t.Run("current is the last entry", func(t *testing.T) {
		l := leads.NewLedger([]leads.Entry{
			botEntry(settings.ClassSupport, 0.85),
			humanEntry(settings.ClassHighQuality),
		})

		current := l.Current()
		if current == nil {
			t.Fatal("Current() = nil")
		}
		if current.Classification != settings.ClassHighQuality {
			t.Errorf("Classification = %q, want high-quality", current.Classification)
		}
	})

	t.Run("current returns a copy", func(t *testing.T) {
		l := leads.NewLedger([]leads.Entry{botEntry(settings.ClassSupport, 0.85)})

		l.Current().Classification = settings.ClassLowQuality

		if got := l.Current().Classification; got != settings.ClassSupport {
			t.Errorf("Classification = %q, want support", got)
		}
	})
}

func TestLedgerJSON(t *testing.T) {
	t.Run("empty ledger encodes as empty array", func(t *testing.T) {
		var l leads.Ledger
		data, err := json.Marshal(l)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("marshal = %s, want []", data)
		}
	})

	t.Run("round trip preserves entries", func(t *testing.T) {
		l := leads.NewLedger([]leads.Entry{
			botEntry(settings.ClassSupport, 0.85),
			humanEntry(settings.ClassHighQuality),
		})

		data, err := json.Marshal(l)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var decoded leads.Ledger
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if decoded.Len() != 2 {
			t.Fatalf("decoded.Len() = %d, want 2", decoded.Len())
		}
		if decoded.Current().Classification != settings.ClassHighQuality {
			t.Errorf("Current().Classification = %q, want high-quality", decoded.Current().Classification)
		}
		if decoded.Entries()[0].Confidence != 0.85 {
			t.Errorf("entries[0].Confidence = %v, want 0.85", decoded.Entries()[0].Confidence)
		}
	})
}
