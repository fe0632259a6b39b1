package settings

import "context"

// System defines the public contract for settings domain operations.
// Snapshot is the Configuration Provider surface consumed by pipeline runs.
type System interface {
	Handler() *Handler

	Snapshot(ctx context.Context) (*Snapshot, error)
	Update(ctx context.Context, cmd UpdateCommand) (*Snapshot, error)
}
