package summaries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notesum/internal/common"
	"github.com/dmitrijs2005/notesum/internal/dbx"
	"github.com/dmitrijs2005/notesum/internal/server/models"
)

const (
	slugConstraint = "summaries_slug_key"

	selectColumns = `id, owner_id, note, summary, tags, starred, slug, created_at, updated_at`
)

// sortColumns maps API sort field names to columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"starred":   "starred",
	"note":      "note",
	"summary":   "summary",
}

// IsSortable reports whether field may be used in a SortOrder.
func IsSortable(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*models.Summary, error) {
	var (
		s    models.Summary
		tags []byte
		slug sql.NullString
	)

	if err := row.Scan(&s.ID, &s.OwnerID, &s.Note, &s.Summary, &tags, &s.Starred, &slug, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &s.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if slug.Valid {
		s.Slug = &slug.String
	}

	return &s, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// one runs a single-row query and maps "no rows" to common.ErrorNotFound.
func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.Summary, error) {
	s, err := scanSummary(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// Create inserts s and fills in the store-maintained fields.
func (r *PostgresRepository) Create(ctx context.Context, s *models.Summary) (*models.Summary, error) {
	tags, err := encodeTags(s.Tags)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}

	query :=
		`INSERT INTO summaries (id, owner_id, note, summary, tags)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING starred, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query, s.ID, s.OwnerID, s.Note, s.Summary, tags).
		Scan(&s.Starred, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Summary, error) {
	return r.one(ctx, `SELECT `+selectColumns+` FROM summaries WHERE id = $1`, id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Summary, error) {
	return r.one(ctx, `SELECT `+selectColumns+` FROM summaries WHERE slug = $1`, slug)
}

// escapeLike escapes the ILIKE wildcards so q is matched literally.
func escapeLike(q string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
}

// whereClause builds the filter shared by Count and List.
func whereClause(filter models.SummaryFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}

	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		n := len(args)
		where += fmt.Sprintf(
			" AND (note ILIKE $%d OR summary ILIKE $%d"+
				" OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE t.tag ILIKE $%d))",
			n, n, n)
	}

	return where, args
}

func (r *PostgresRepository) Count(ctx context.Context, filter models.SummaryFilter) (int, error) {
	where, args := whereClause(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM summaries`+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

// List returns summaries matching filter in the given order. A positive limit
// selects one window starting at offset; otherwise all matches are returned.
// Ties are broken by id so windows never overlap.
func (r *PostgresRepository) List(ctx context.Context, filter models.SummaryFilter, order models.SortOrder, limit, offset int) ([]*models.Summary, error) {
	column, ok := sortColumns[order.Field]
	if !ok {
		return nil, common.ValidationErrorf("unsupported sort field %q", order.Field)
	}

	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}

	where, args := whereClause(filter)
	query := `SELECT ` + selectColumns + ` FROM summaries` + where +
		fmt.Sprintf(" ORDER BY %s %s, id ASC", column, dir)

	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Summary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

// Update applies the non-nil fields of patch. An empty patch returns the
// record unchanged.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.SummaryPatch) (*models.Summary, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Note != nil {
		add("note", *patch.Note)
	}
	if patch.Summary != nil {
		add("summary", *patch.Summary)
	}
	if patch.Tags != nil {
		tags, err := encodeTags(*patch.Tags)
		if err != nil {
			return nil, fmt.Errorf("encoding tags: %w", err)
		}
		add("tags", tags)
	}
	if patch.Starred != nil {
		add("starred", *patch.Starred)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE summaries SET %s, updated_at = now() WHERE id = $%d RETURNING `+selectColumns,
		strings.Join(sets, ", "), len(args))

	return r.one(ctx, query, args...)
}

// SetStarred sets the starred flag, or flips it when starred is nil.
func (r *PostgresRepository) SetStarred(ctx context.Context, id string, starred *bool) (*models.Summary, error) {
	if starred == nil {
		return r.one(ctx,
			`UPDATE summaries SET starred = NOT starred, updated_at = now() WHERE id = $1 RETURNING `+selectColumns, id)
	}
	return r.one(ctx,
		`UPDATE summaries SET starred = $2, updated_at = now() WHERE id = $1 RETURNING `+selectColumns, id, *starred)
}

// SetSlug replaces the share slug of a summary. A slug already used by
// another summary yields common.ErrorSlugConflict and nothing changes.
func (r *PostgresRepository) SetSlug(ctx context.Context, id, slug string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE summaries SET slug = $2, updated_at = now() WHERE id = $1`, id, slug)
	if err != nil {
		if dbx.IsUniqueViolation(err, slugConstraint) {
			return common.ErrorSlugConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM summaries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
