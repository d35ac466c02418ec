package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notesum/internal/common"
	"github.com/dmitrijs2005/notesum/internal/dbx"
	"github.com/dmitrijs2005/notesum/internal/server/export"
	"github.com/dmitrijs2005/notesum/internal/server/models"
	"github.com/dmitrijs2005/notesum/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notesum/internal/server/repositories/summaries"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

const (
	// SlugLength is the number of symbols in a share slug.
	SlugLength = 10

	defaultSortField = "createdAt"
)

// newSlug returns a random URL-safe slug. Swapped in tests.
var newSlug = func() string {
	return shortuuid.New()[:SlugLength]
}

// SummaryInput holds the fields of a new summary.
type SummaryInput struct {
	Note    string   `json:"note" validate:"min=1,max=20000"`
	Summary string   `json:"summary" validate:"min=1,max=8000"`
	Tags    []string `json:"tags" validate:"max=10,dive,min=1,max=64"`
}

type summaryPatchInput struct {
	Note    *string   `json:"note" validate:"omitnil,min=1,max=20000"`
	Summary *string   `json:"summary" validate:"omitnil,min=1,max=8000"`
	Tags    *[]string `json:"tags" validate:"omitnil,max=10,dive,min=1,max=64"`
}

// ListParams selects a listing. Page and Limit are used only when both are
// positive; otherwise the whole ordered result is returned.
type ListParams struct {
	Query   string
	OwnerID string
	Page    int
	Limit   int
	Sort    string
}

// Paginated reports whether p asks for a single page.
func (p ListParams) Paginated() bool {
	return p.Page > 0 && p.Limit > 0
}

// Archiver stores rendered exports. *export.S3Archiver implements it.
type Archiver interface {
	Archive(ctx context.Context, ownerID string, doc *export.Document) (*export.Archived, error)
}

type SummaryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	archiver    Archiver
}

// NewSummaryService builds the service. archiver may be nil, in which case
// Archive reports common.ErrorUnavailable.
func NewSummaryService(db *sql.DB, m repomanager.RepositoryManager, archiver Archiver) *SummaryService {
	return &SummaryService{
		db:          db,
		repomanager: m,
		archiver:    archiver,
	}
}

// normalizeTags trims every tag and drops repeats, keeping the first one.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}

	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
		}
		// blank tags stay in so validation reports them
		out = append(out, t)
	}
	return out
}

// ParseSort reads "field", "-field" or "field:asc|desc". An empty string
// means newest first.
func ParseSort(s string) (models.SortOrder, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.SortOrder{Field: defaultSortField, Desc: true}, nil
	}

	order := models.SortOrder{Field: s}

	if field, dir, ok := strings.Cut(s, ":"); ok {
		order.Field = field
		switch strings.ToLower(dir) {
		case "asc", "1":
		case "desc", "-1":
			order.Desc = true
		default:
			return models.SortOrder{}, common.ValidationErrorf("unsupported sort direction %q", dir)
		}
	} else if strings.HasPrefix(s, "-") {
		order.Field = s[1:]
		order.Desc = true
	}

	if !summaries.IsSortable(order.Field) {
		return models.SortOrder{}, common.ValidationErrorf("unsupported sort field %q", order.Field)
	}

	return order, nil
}

// Create stores a new summary owned by ownerID.
func (s *SummaryService) Create(ctx context.Context, ownerID string, in SummaryInput) (*models.Summary, error) {
	in.Tags = normalizeTags(in.Tags)

	if err := validateStruct(in); err != nil {
		return nil, err
	}

	summary := &models.Summary{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Note:    in.Note,
		Summary: in.Summary,
		Tags:    in.Tags,
	}

	summary, err := s.repomanager.Summaries(s.db).Create(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("error creating summary: %w", err)
	}

	return summary, nil
}

// List returns the summaries selected by p, newest first unless p.Sort says
// otherwise. An unpaginated listing comes back as a single page holding
// every match.
func (s *SummaryService) List(ctx context.Context, p ListParams) (*models.SummaryPage, error) {
	order, err := ParseSort(p.Sort)
	if err != nil {
		return nil, err
	}

	filter := models.SummaryFilter{
		Query:   p.Query,
		OwnerID: p.OwnerID,
	}

	if !p.Paginated() {
		items, err := s.repomanager.Summaries(s.db).List(ctx, filter, order, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("error listing summaries: %w", err)
		}
		return &models.SummaryPage{Items: items, Page: 1, Pages: 1, Total: len(items)}, nil
	}

	limit := p.Limit
	page := &models.SummaryPage{Page: p.Page}

	err = dbx.WithTx(ctx, s.db, dbx.ReadSnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Summaries(tx)

		total, err := repo.Count(ctx, filter)
		if err != nil {
			return err
		}

		items, err := repo.List(ctx, filter, order, limit, (p.Page-1)*limit)
		if err != nil {
			return err
		}

		page.Items = items
		page.Total = total
		page.Pages = (total + limit - 1) / limit
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing summaries: %w", err)
	}

	return page, nil
}

// owned loads a summary and hides it from anyone but its owner.
func (s *SummaryService) owned(ctx context.Context, id, ownerID string) (*models.Summary, error) {
	summary, err := s.repomanager.Summaries(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if summary.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return summary, nil
}

// Update applies patch to a summary owned by ownerID.
func (s *SummaryService) Update(ctx context.Context, id, ownerID string, patch models.SummaryPatch) (*models.Summary, error) {
	if patch.Tags != nil {
		tags := normalizeTags(*patch.Tags)
		patch.Tags = &tags
	}

	if err := validateStruct(summaryPatchInput{Note: patch.Note, Summary: patch.Summary, Tags: patch.Tags}); err != nil {
		return nil, err
	}

	if _, err := s.owned(ctx, id, ownerID); err != nil {
		return nil, err
	}

	summary, err := s.repomanager.Summaries(s.db).Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// Delete removes a summary owned by ownerID.
func (s *SummaryService) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.owned(ctx, id, ownerID); err != nil {
		return err
	}
	return s.repomanager.Summaries(s.db).Delete(ctx, id)
}

// SetStarred sets the starred flag, or flips it when starred is nil.
func (s *SummaryService) SetStarred(ctx context.Context, id string, starred *bool) (*models.Summary, error) {
	return s.repomanager.Summaries(s.db).SetStarred(ctx, id, starred)
}

// Share gives a summary a fresh public slug. Any previous slug stops
// resolving.
func (s *SummaryService) Share(ctx context.Context, id string) (string, error) {
	slug := newSlug()

	if err := s.repomanager.Summaries(s.db).SetSlug(ctx, id, slug); err != nil {
		return "", err
	}

	return slug, nil
}

// GetBySlug returns the public projection of a shared summary.
func (s *SummaryService) GetBySlug(ctx context.Context, slug string) (*models.PublicSummary, error) {
	if len(slug) != SlugLength {
		return nil, common.ErrorNotFound
	}

	summary, err := s.repomanager.Summaries(s.db).GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	return summary.Public(), nil
}

// Export renders a summary owned by ownerID.
func (s *SummaryService) Export(ctx context.Context, id, ownerID string, format export.Format) (*export.Document, error) {
	summary, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return export.Render(summary, format)
}

// Archive renders a summary and stores it, returning a temporary download
// link.
func (s *SummaryService) Archive(ctx context.Context, id, ownerID string, format export.Format) (*export.Archived, error) {
	if s.archiver == nil {
		return nil, fmt.Errorf("%w: archive storage is not configured", common.ErrorUnavailable)
	}

	doc, err := s.Export(ctx, id, ownerID, format)
	if err != nil {
		return nil, err
	}

	archived, err := s.archiver.Archive(ctx, ownerID, doc)
	if err != nil {
		return nil, errors.Join(common.ErrorUpstream, err)
	}

	return archived, nil
}
