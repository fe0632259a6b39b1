package references

import (
	"context"

	"github.com/google/uuid"

	"github.com/inlethq/triage/pkg/pagination"
)

// System defines the public contract for reference material operations.
// Match is the pipeline's best-effort stage 1b surface.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Reference], error)

	Find(ctx context.Context, id uuid.UUID) (*Reference, error)
	Match(ctx context.Context, industry string) ([]Reference, error)
	Create(ctx context.Context, cmd CreateCommand) (*Reference, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
