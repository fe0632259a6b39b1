package triage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/inlethq/triage/internal/autonomy"
	"github.com/inlethq/triage/internal/intel"
	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/pipeline"
	"github.com/inlethq/triage/internal/prompts"
	"github.com/inlethq/triage/internal/references"
	"github.com/inlethq/triage/internal/settings"
)

type repo struct {
	rt      *pipeline.Runtime
	leads   leads.System
	config  settings.System
	workers int
	logger  *slog.Logger
}

// New creates the triage action system. It internally constructs the
// pipeline runtime, wiring the model-backed analyst to the domain systems.
func New(
	agent gaconfig.AgentConfig,
	retry pipeline.RetryConfig,
	workers int,
	logger *slog.Logger,
	leadSys leads.System,
	refSys references.System,
	settingSys settings.System,
	promptSys prompts.System,
) System {
	analyst := intel.NewAnalyst(agent, promptSys, logger)

	rt := &pipeline.Runtime{
		Classifier: analyst,
		Generator:  analyst,
		Leads:      leadSys,
		References: refSys,
		Settings:   settingSys,
		Retry:      retry,
		Logger:     logger.With("pipeline", "triage"),
	}

	return &repo{
		rt:      rt,
		leads:   leadSys,
		config:  settingSys,
		workers: max(workers, 1),
		logger:  logger.With("system", "triage"),
	}
}

func (r *repo) Handler(maxBodySize int64) *Handler {
	return NewHandler(r, r.logger, maxBodySize)
}

// Submit registers a lead and runs the pipeline for it. A pipeline failure
// does not fail the submission: the lead stays parked at its last persisted
// checkpoint and is returned as-is for a later Process call.
func (r *repo) Submit(ctx context.Context, cmd leads.SubmitCommand) (*leads.Lead, error) {
	created, err := r.leads.Create(ctx, cmd)
	if err != nil {
		return nil, err
	}

	result, err := pipeline.Execute(ctx, r.rt, created.ID)
	if err != nil {
		r.logger.Error("pipeline run failed, lead parked at last checkpoint",
			"id", created.ID,
			"error", err,
		)
		return r.leads.Find(ctx, created.ID)
	}

	return result.Lead, nil
}

// SubmitBatch registers and processes a batch of leads with bounded
// concurrency. Each submission succeeds or fails independently.
func (r *repo) SubmitBatch(ctx context.Context, cmds []leads.SubmitCommand) ([]BatchItem, error) {
	if len(cmds) == 0 {
		return nil, fmt.Errorf("%w: empty batch", leads.ErrInvalidCommand)
	}

	items := make([]BatchItem, len(cmds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, cmd := range cmds {
		g.Go(func() error {
			if gctx.Err() != nil {
				items[i].Error = gctx.Err().Error()
				return nil
			}

			lead, err := r.Submit(gctx, cmd)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}

			items[i].Lead = lead
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Info("batch submitted", "count", len(cmds))
	return items, nil
}

// Process runs or resumes the pipeline for an existing lead. Completed
// stages are skipped via the checkpoint cursor.
func (r *repo) Process(ctx context.Context, id uuid.UUID) (*pipeline.Result, error) {
	result, err := pipeline.Execute(ctx, r.rt, id)
	if err != nil {
		return nil, fmt.Errorf("process lead %s: %w", id, err)
	}

	r.logger.Info("lead processed",
		"id", id,
		"status", result.Lead.Status,
		"auto_send", result.Decision.AutoSend,
	)
	return result, nil
}

// Reprocess reopens the pipeline for a lead parked in review: the checkpoint
// cursor is reset and a fresh bot run re-evaluates classification and
// autonomy. An auto-send decision on the rerun closes the lead from review.
func (r *repo) Reprocess(ctx context.Context, id uuid.UUID) (*pipeline.Result, error) {
	lead, err := r.leads.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := lead.Reclassify(); err != nil {
		return nil, err
	}

	if _, err := r.leads.Save(ctx, lead); err != nil {
		return nil, err
	}

	return r.Process(ctx, id)
}

// ManualClassify records a human classification entry and routes the lead to
// review. The entry captures the threshold in force at classification time
// even though human entries never auto-send.
func (r *repo) ManualClassify(ctx context.Context, id uuid.UUID, cmd ManualClassifyCommand) (*leads.Lead, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	snap, err := r.config.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture settings snapshot: %w", err)
	}

	class, err := snap.Parse(cmd.Classification)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", leads.ErrInvalidCommand, err)
	}

	threshold, err := snap.Threshold(class)
	if err != nil {
		return nil, err
	}

	lead, err := r.leads.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := leads.Entry{
		Author:           leads.AuthorHuman,
		Classification:   class,
		Reasoning:        cmd.Reasoning,
		AppliedThreshold: threshold,
		At:               time.Now().UTC(),
	}

	decision := autonomy.Decision{
		NeedsReview:      true,
		AppliedThreshold: threshold,
	}

	if err := lead.ApplyClassification(entry, decision); err != nil {
		return nil, err
	}

	saved, err := r.leads.Save(ctx, lead)
	if err != nil {
		return nil, err
	}

	r.logger.Info("lead manually classified",
		"id", saved.ID,
		"classification", class,
	)
	return saved, nil
}

// Approve marks a reviewed lead as sent by a human.
func (r *repo) Approve(ctx context.Context, id uuid.UUID) (*leads.Lead, error) {
	lead, err := r.leads.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := lead.Approve(time.Now().UTC()); err != nil {
		return nil, err
	}

	saved, err := r.leads.Save(ctx, lead)
	if err != nil {
		return nil, err
	}

	r.logger.Info("lead approved", "id", saved.ID)
	return saved, nil
}

// Reject closes a reviewed lead without sending.
func (r *repo) Reject(ctx context.Context, id uuid.UUID) (*leads.Lead, error) {
	lead, err := r.leads.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := lead.Reject(); err != nil {
		return nil, err
	}

	saved, err := r.leads.Save(ctx, lead)
	if err != nil {
		return nil, err
	}

	r.logger.Info("lead rejected", "id", saved.ID)
	return saved, nil
}

// Reroute reopens a done lead toward review or classify. Rerouting to
// classify resets the pipeline cursor; the caller triggers the rerun via
// Process.
func (r *repo) Reroute(ctx context.Context, id uuid.UUID, cmd RerouteCommand) (*leads.Lead, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	source, err := leads.ParseRerouteSource(cmd.Source)
	if err != nil {
		return nil, err
	}

	lead, err := r.leads.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := lead.Reopen(source, cmd.Reason, leads.Status(cmd.Target), time.Now().UTC()); err != nil {
		return nil, err
	}

	saved, err := r.leads.Save(ctx, lead)
	if err != nil {
		return nil, err
	}

	r.logger.Info("lead rerouted",
		"id", saved.ID,
		"source", source,
		"target", saved.Status,
	)
	return saved, nil
}
