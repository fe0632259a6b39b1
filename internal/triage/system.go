package triage

import (
	"context"

	"github.com/google/uuid"

	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/pipeline"
)

// System defines the public contract for triage actions. Submit and
// SubmitBatch register leads and run the pipeline; Process resumes a parked
// lead from its last checkpoint; the remaining verbs are the human review
// surface.
type System interface {
	Handler(maxBodySize int64) *Handler

	Submit(ctx context.Context, cmd leads.SubmitCommand) (*leads.Lead, error)
	SubmitBatch(ctx context.Context, cmds []leads.SubmitCommand) ([]BatchItem, error)
	Process(ctx context.Context, id uuid.UUID) (*pipeline.Result, error)
	Reprocess(ctx context.Context, id uuid.UUID) (*pipeline.Result, error)
	ManualClassify(ctx context.Context, id uuid.UUID, cmd ManualClassifyCommand) (*leads.Lead, error)
	Approve(ctx context.Context, id uuid.UUID) (*leads.Lead, error)
	Reject(ctx context.Context, id uuid.UUID) (*leads.Lead, error)
	Reroute(ctx context.Context, id uuid.UUID, cmd RerouteCommand) (*leads.Lead, error)
}
