package leads

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/inlethq/triage/internal/settings"
	"github.com/inlethq/triage/pkg/query"
	"github.com/inlethq/triage/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "leads", "l").
	Project("id", "ID").
	Project("name", "Name").
	Project("email", "Email").
	Project("company", "Company").
	Project("message", "Message").
	Project("status", "Status").
	Project("resolution", "Resolution").
	Project("current_classification", "Classification").
	Project("research", "Research").
	Project("industry", "Industry").
	Project("generated_content", "GeneratedContent").
	Project("matched_references", "MatchedReferences").
	Project("ledger", "Ledger").
	Project("reroute", "Reroute").
	Project("stage", "Stage").
	Project("attempt", "Attempt").
	Project("sent_at", "SentAt").
	Project("sent_by", "SentBy").
	Project("version", "Version").
	Project("submitted_at", "SubmittedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "SubmittedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for lead queries.
// Nil fields are ignored. Classification matches the ledger's current entry.
type Filters struct {
	Status         *Status                  `json:"status,omitempty"`
	Classification *settings.Classification `json:"classification,omitempty"`
	SentBy         *string                  `json:"sent_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("Classification", f.Classification).
		WhereEquals("SentBy", f.SentBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		status := Status(s)
		f.Status = &status
	}

	if c := values.Get("classification"); c != "" {
		class := settings.Classification(c)
		f.Classification = &class
	}

	if v := values.Get("sent_by"); v != "" {
		f.SentBy = &v
	}

	return f
}

func scanLead(s repository.Scanner) (Lead, error) {
	var l Lead
	var current sql.NullString
	var matchedRaw, ledgerRaw, rerouteRaw []byte

	err := s.Scan(
		&l.ID,
		&l.Submission.Name,
		&l.Submission.Email,
		&l.Submission.Company,
		&l.Submission.Message,
		&l.Status,
		&l.Resolution,
		&current,
		&l.Research,
		&l.Industry,
		&l.GeneratedContent,
		&matchedRaw,
		&ledgerRaw,
		&rerouteRaw,
		&l.Stage,
		&l.Attempt,
		&l.SentAt,
		&l.SentBy,
		&l.Version,
		&l.SubmittedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return l, err
	}

	if len(matchedRaw) > 0 {
		if err := json.Unmarshal(matchedRaw, &l.MatchedReferences); err != nil {
			return l, fmt.Errorf("unmarshal matched_references: %w", err)
		}
	}

	if len(ledgerRaw) > 0 {
		if err := json.Unmarshal(ledgerRaw, &l.Ledger); err != nil {
			return l, fmt.Errorf("unmarshal ledger: %w", err)
		}
	}

	if len(rerouteRaw) > 0 {
		var r Reroute
		if err := json.Unmarshal(rerouteRaw, &r); err != nil {
			return l, fmt.Errorf("unmarshal reroute: %w", err)
		}
		l.Reroute = &r
	}

	return l, nil
}

func marshalLead(l *Lead) (ledger, matched, reroute []byte, current *string, err error) {
	ledger, err = json.Marshal(l.Ledger)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal ledger: %w", err)
	}

	refs := l.MatchedReferences
	if refs == nil {
		refs = []uuid.UUID{}
	}
	matched, err = json.Marshal(refs)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal matched_references: %w", err)
	}

	if l.Reroute != nil {
		reroute, err = json.Marshal(l.Reroute)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal reroute: %w", err)
		}
	}

	if e := l.Ledger.Current(); e != nil {
		c := string(e.Classification)
		current = &c
	}

	return ledger, matched, reroute, current, nil
}
