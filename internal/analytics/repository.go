package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an analytics repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "analytics"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

// Agreement loads every non-empty ledger and computes the agreement report.
func (r *repo) Agreement(ctx context.Context) (*AgreementReport, error) {
	q := `
		SELECT ledger FROM leads
		WHERE jsonb_array_length(ledger) > 0`

	ledgers, err := repository.QueryMany(ctx, r.db, q, nil, scanLedger)
	if err != nil {
		return nil, fmt.Errorf("query ledgers: %w", err)
	}

	return BuildReport(ledgers), nil
}

func scanLedger(s repository.Scanner) (leads.Ledger, error) {
	var raw []byte
	if err := s.Scan(&raw); err != nil {
		return leads.Ledger{}, err
	}

	var ledger leads.Ledger
	if err := json.Unmarshal(raw, &ledger); err != nil {
		return leads.Ledger{}, fmt.Errorf("unmarshal ledger: %w", err)
	}

	return ledger, nil
}
