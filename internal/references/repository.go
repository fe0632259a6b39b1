package references

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/inlethq/triage/pkg/pagination"
	"github.com/inlethq/triage/pkg/query"
	"github.com/inlethq/triage/pkg/repository"
)

// matchLimit caps how many references a single lead can pick up.
const matchLimit = 3

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a reference repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "references"),
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
) (*pagination.PageResult[Reference], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Summary")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count references: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanReference)
	if err != nil {
		return nil, fmt.Errorf("query references: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Reference, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	ref, err := repository.QueryOne(ctx, r.db, q, args, scanReference)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &ref, nil
}

// Match returns the newest references for an industry, capped at matchLimit.
// Case-insensitive on industry so classifier-reported tags match loosely.
func (r *repo) Match(ctx context.Context, industry string) ([]Reference, error) {
	q := `
		SELECT id, title, industry, summary, url, created_at
		FROM reference_materials
		WHERE LOWER(industry) = LOWER($1)
		ORDER BY created_at DESC
		LIMIT $2`

	return repository.QueryMany(ctx, r.db, q, []any{industry, matchLimit}, scanReference)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Reference, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO reference_materials(id, title, industry, summary, url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, industry, summary, url, created_at`

	args := []any{uuid.New(), cmd.Title, cmd.Industry, cmd.Summary, cmd.URL}

	ref, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Reference, error) {
		return repository.QueryOne(ctx, tx, q, args, scanReference)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("reference registered", "id", ref.ID, "industry", ref.Industry)
	return &ref, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM reference_materials WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("reference deleted", "id", id)
	return nil
}
