package analytics

import "context"

// System defines the public contract for analytics queries.
type System interface {
	Handler() *Handler

	Agreement(ctx context.Context) (*AgreementReport, error)
}
