package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/notesum/internal/common"
	"github.com/dmitrijs2005/notesum/internal/dbx"
	"github.com/dmitrijs2005/notesum/internal/server/models"
	"github.com/dmitrijs2005/notesum/internal/server/repositories/summaries"
	"github.com/dmitrijs2005/notesum/internal/server/repositories/users"
)

// fakeUsersRepo is an in-memory users.Repository.
type fakeUsersRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	err     error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.CreatedAt = time.Now()
	cp := *u
	f.byEmail[u.Email] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

// fakeSummariesRepo is an in-memory summaries.Repository good enough to
// check service behaviour end to end.
type fakeSummariesRepo struct {
	mu    sync.Mutex
	items map[string]*models.Summary
	clock time.Time
	err   error
}

func newFakeSummariesRepo() *fakeSummariesRepo {
	return &fakeSummariesRepo{
		items: map[string]*models.Summary{},
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func clone(s *models.Summary) *models.Summary {
	cp := *s
	cp.Tags = append([]string{}, s.Tags...)
	if s.Slug != nil {
		slug := *s.Slug
		cp.Slug = &slug
	}
	return &cp
}

func (f *fakeSummariesRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeSummariesRepo) Create(ctx context.Context, s *models.Summary) (*models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s.CreatedAt = f.tick()
	s.UpdatedAt = s.CreatedAt
	f.items[s.ID] = clone(s)
	return s, nil
}

func (f *fakeSummariesRepo) GetByID(ctx context.Context, id string) (*models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(s), nil
}

func (f *fakeSummariesRepo) GetBySlug(ctx context.Context, slug string) (*models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.items {
		if s.Slug != nil && *s.Slug == slug {
			return clone(s), nil
		}
	}
	return nil, common.ErrorNotFound
}

func matches(s *models.Summary, filter models.SummaryFilter) bool {
	if filter.OwnerID != "" && s.OwnerID != filter.OwnerID {
		return false
	}
	if filter.Query == "" {
		return true
	}
	q := strings.ToLower(filter.Query)
	if strings.Contains(strings.ToLower(s.Note), q) || strings.Contains(strings.ToLower(s.Summary), q) {
		return true
	}
	for _, t := range s.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func (f *fakeSummariesRepo) filtered(filter models.SummaryFilter) []*models.Summary {
	var out []*models.Summary
	for _, s := range f.items {
		if matches(s, filter) {
			out = append(out, clone(s))
		}
	}
	return out
}

func (f *fakeSummariesRepo) Count(ctx context.Context, filter models.SummaryFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return len(f.filtered(filter)), nil
}

func (f *fakeSummariesRepo) List(ctx context.Context, filter models.SummaryFilter, order models.SortOrder, limit, offset int) ([]*models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if !summaries.IsSortable(order.Field) {
		return nil, common.ValidationErrorf("unsupported sort field %q", order.Field)
	}

	items := f.filtered(filter)
	less := func(a, b *models.Summary) int {
		switch order.Field {
		case "note":
			return strings.Compare(a.Note, b.Note)
		case "summary":
			return strings.Compare(a.Summary, b.Summary)
		case "updatedAt":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := less(items[i], items[j])
		if order.Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return items[i].ID < items[j].ID
	})

	if limit > 0 {
		if offset >= len(items) {
			return []*models.Summary{}, nil
		}
		items = items[offset:min(offset+limit, len(items))]
	}
	if items == nil {
		items = []*models.Summary{}
	}
	return items, nil
}

func (f *fakeSummariesRepo) Update(ctx context.Context, id string, patch models.SummaryPatch) (*models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Note != nil {
		s.Note = *patch.Note
	}
	if patch.Summary != nil {
		s.Summary = *patch.Summary
	}
	if patch.Tags != nil {
		s.Tags = append([]string{}, (*patch.Tags)...)
	}
	if patch.Starred != nil {
		s.Starred = *patch.Starred
	}
	s.UpdatedAt = f.tick()
	return clone(s), nil
}

func (f *fakeSummariesRepo) SetStarred(ctx context.Context, id string, starred *bool) (*models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if starred == nil {
		s.Starred = !s.Starred
	} else {
		s.Starred = *starred
	}
	return clone(s), nil
}

func (f *fakeSummariesRepo) SetSlug(ctx context.Context, id, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	for otherID, o := range f.items {
		if otherID != id && o.Slug != nil && *o.Slug == slug {
			return common.ErrorSlugConflict
		}
	}
	s.Slug = &slug
	return nil
}

func (f *fakeSummariesRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSummariesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), s: newFakeSummariesRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Summaries(db dbx.DBTX) summaries.Repository   { return m.s }
