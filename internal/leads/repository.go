package leads

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/inlethq/triage/pkg/pagination"
	"github.com/inlethq/triage/pkg/query"
	"github.com/inlethq/triage/pkg/repository"
)

const leadColumns = `id, name, email, company, message, status, resolution,
	       current_classification, research, industry, generated_content,
	       matched_references, ledger, reroute, stage, attempt,
	       sent_at, sent_by, version, submitted_at, updated_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a lead repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "leads"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Lead], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Email", "Company", "Message")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanLead)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Lead, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	l, err := repository.QueryOne(ctx, r.db, q, args, scanLead)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

func (r *repo) Create(ctx context.Context, cmd SubmitCommand) (*Lead, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	lead := NewLead(cmd, time.Now().UTC())

	q := fmt.Sprintf(`
		INSERT INTO leads(id, name, email, company, message, status, attempt, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, leadColumns)

	args := []any{
		lead.ID,
		lead.Submission.Name,
		lead.Submission.Email,
		lead.Submission.Company,
		lead.Submission.Message,
		lead.Status,
		lead.Attempt,
		lead.Version,
	}

	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Lead, error) {
		return repository.QueryOne(ctx, tx, q, args, scanLead)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("lead registered",
		"id", created.ID,
		"company", created.Submission.Company,
	)
	return &created, nil
}

// Save persists a lead document with a compare-and-swap on its version.
// A stale writer gets ErrVersionConflict and must reload before retrying;
// the submission fields are immutable and never rewritten.
func (r *repo) Save(ctx context.Context, l *Lead) (*Lead, error) {
	ledger, matched, reroute, current, err := marshalLead(l)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		UPDATE leads
		SET status = $2, resolution = $3, current_classification = $4,
		    research = $5, industry = $6, generated_content = $7,
		    matched_references = $8, ledger = $9, reroute = $10,
		    stage = $11, attempt = $12, sent_at = $13, sent_by = $14,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $15
		RETURNING %s`, leadColumns)

	args := []any{
		l.ID,
		l.Status,
		l.Resolution,
		current,
		l.Research,
		l.Industry,
		l.GeneratedContent,
		matched,
		ledger,
		reroute,
		l.Stage,
		l.Attempt,
		l.SentAt,
		l.SentBy,
		l.Version,
	}

	saved, err := repository.QueryOne(ctx, r.db, q, args, scanLead)
	if err == nil {
		return &saved, nil
	}

	if mapped := repository.MapError(err, errStaleOrMissing, ErrDuplicate); mapped == errStaleOrMissing {
		return nil, r.resolveConflict(ctx, l.ID)
	}
	return nil, err
}

// resolveConflict distinguishes a missing lead from a version conflict after
// a zero-row CAS update.
func (r *repo) resolveConflict(ctx context.Context, id uuid.UUID) error {
	var version int64
	err := r.db.QueryRowContext(ctx, "SELECT version FROM leads WHERE id = $1", id).Scan(&version)
	if err != nil {
		return ErrNotFound
	}

	r.logger.Warn("stale lead write rejected", "id", id, "current_version", version)
	return ErrVersionConflict
}

var errStaleOrMissing = fmt.Errorf("stale or missing lead")
