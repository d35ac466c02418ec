// Package summaries persists Summary records in PostgreSQL.
package summaries

import (
	"context"

	"github.com/dmitrijs2005/notesum/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Summary) (*models.Summary, error)
	GetByID(ctx context.Context, id string) (*models.Summary, error)
	GetBySlug(ctx context.Context, slug string) (*models.Summary, error)
	Count(ctx context.Context, filter models.SummaryFilter) (int, error)
	List(ctx context.Context, filter models.SummaryFilter, order models.SortOrder, limit, offset int) ([]*models.Summary, error)
	Update(ctx context.Context, id string, patch models.SummaryPatch) (*models.Summary, error)
	SetStarred(ctx context.Context, id string, starred *bool) (*models.Summary, error)
	SetSlug(ctx context.Context, id, slug string) error
	Delete(ctx context.Context, id string) error
}
