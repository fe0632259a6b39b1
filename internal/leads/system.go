package leads

import (
	"context"

	"github.com/google/uuid"

	"github.com/inlethq/triage/pkg/pagination"
)

// System defines the public contract for lead persistence and queries.
// Save is the Persistence Gateway's compare-and-swap write; state changes are
// made through the Lead transition methods before saving.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Lead], error)

	Find(ctx context.Context, id uuid.UUID) (*Lead, error)
	Create(ctx context.Context, cmd SubmitCommand) (*Lead, error)
	Save(ctx context.Context, l *Lead) (*Lead, error)
}
