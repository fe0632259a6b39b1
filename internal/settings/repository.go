package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/inlethq/triage/pkg/repository"
)

// The settings table holds a single row (id = 1); every update rewrites the
// tunable fields and bumps version so in-flight snapshots stay distinguishable.
const settingsQuery = `
	SELECT thresholds, rollout, response_enabled,
	       allow_high_value_auto_send, reference_matching,
	       version, updated_at
	FROM settings WHERE id = 1`

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a settings repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "settings"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Snapshot(ctx context.Context) (*Snapshot, error) {
	s, err := repository.QueryOne(ctx, r.db, settingsQuery, nil, scanSnapshot)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrInvalidSettings)
	}
	return &s, nil
}

func (r *repo) Update(ctx context.Context, cmd UpdateCommand) (*Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	thresholds, err := json.Marshal(cmd.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("marshal thresholds: %w", err)
	}
	rollout, err := json.Marshal(cmd.Rollout)
	if err != nil {
		return nil, fmt.Errorf("marshal rollout: %w", err)
	}
	responses, err := json.Marshal(cmd.ResponseEnabled)
	if err != nil {
		return nil, fmt.Errorf("marshal response_enabled: %w", err)
	}

	q := `
		UPDATE settings
		SET thresholds = $1, rollout = $2, response_enabled = $3,
		    allow_high_value_auto_send = $4, reference_matching = $5,
		    version = version + 1, updated_at = NOW()
		WHERE id = 1
		RETURNING thresholds, rollout, response_enabled,
		          allow_high_value_auto_send, reference_matching,
		          version, updated_at`

	args := []any{
		thresholds,
		rollout,
		responses,
		cmd.AllowHighValueAutoSend,
		cmd.ReferenceMatching,
	}

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Snapshot, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSnapshot)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrInvalidSettings)
	}

	r.logger.Info("settings updated",
		"version", s.Version,
		"rollout_enabled", s.Rollout.Enabled,
		"rollout_percentage", s.Rollout.Percentage,
	)
	return &s, nil
}

func scanSnapshot(s repository.Scanner) (Snapshot, error) {
	var snap Snapshot
	var thresholdsRaw, rolloutRaw, responsesRaw []byte

	err := s.Scan(
		&thresholdsRaw,
		&rolloutRaw,
		&responsesRaw,
		&snap.AllowHighValueAutoSend,
		&snap.ReferenceMatching,
		&snap.Version,
		&snap.CapturedAt,
	)
	if err != nil {
		return snap, err
	}

	if err := json.Unmarshal(thresholdsRaw, &snap.Thresholds); err != nil {
		return snap, fmt.Errorf("unmarshal thresholds: %w", err)
	}
	if err := json.Unmarshal(rolloutRaw, &snap.Rollout); err != nil {
		return snap, fmt.Errorf("unmarshal rollout: %w", err)
	}
	if len(responsesRaw) > 0 {
		if err := json.Unmarshal(responsesRaw, &snap.ResponseEnabled); err != nil {
			return snap, fmt.Errorf("unmarshal response_enabled: %w", err)
		}
	}
	if snap.ResponseEnabled == nil {
		snap.ResponseEnabled = map[Classification]bool{}
	}

	return snap, nil
}
