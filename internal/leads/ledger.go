package leads

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/inlethq/triage/internal/settings"
)

// Entry is one immutable classification event. Bot entries carry confidence
// and reasoning; human entries carry neither. AppliedThreshold records the
// threshold in force when the entry was evaluated, so later threshold changes
// never obscure what a past decision saw.
type Entry struct {
	Author           Author                  `json:"author"`
	Classification   settings.Classification `json:"classification"`
	Confidence       float64                 `json:"confidence,omitempty"`
	Reasoning        string                  `json:"reasoning,omitempty"`
	AppliedThreshold float64                 `json:"applied_threshold"`
	At               time.Time               `json:"at"`
}

// Ledger is the ordered, append-only history of classification events for a
// lead. The entry slice is unexported and Append copies, so no caller can
// rewrite or drop a past entry; the full bot/human decision trail survives
// for agreement auditing. The zero value is an empty ledger.
type Ledger struct {
	entries []Entry
}

// NewLedger creates a ledger from existing entries, copying the input.
func NewLedger(entries []Entry) Ledger {
	return Ledger{entries: slices.Clone(entries)}
}

// Append returns a new ledger with e as its last entry. The receiver is
// unchanged.
func (l Ledger) Append(e Entry) Ledger {
	entries := make([]Entry, len(l.entries), len(l.entries)+1)
	copy(entries, l.entries)
	return Ledger{entries: append(entries, e)}
}

// Current returns a copy of the last entry, or nil for an empty ledger.
func (l Ledger) Current() *Entry {
	if len(l.entries) == 0 {
		return nil
	}
	e := l.entries[len(l.entries)-1]
	return &e
}

// Len returns the number of entries.
func (l Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all entries in insertion order.
func (l Ledger) Entries() []Entry {
	return slices.Clone(l.entries)
}

// MarshalJSON encodes the ledger as a plain entry array.
func (l Ledger) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

// UnmarshalJSON decodes a plain entry array, preserving order.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	l.entries = entries
	return nil
}
