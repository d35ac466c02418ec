package httpapi

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/notesum/internal/common"
	"github.com/dmitrijs2005/notesum/internal/server/auth"
	"github.com/dmitrijs2005/notesum/internal/server/export"
	"github.com/dmitrijs2005/notesum/internal/server/models"
	"github.com/dmitrijs2005/notesum/internal/server/services"
)

const testSecret = "test-secret"

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
	pass  map[string]string
	seq   int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{}, pass: map[string]string{}}
}

func (f *fakeUsers) issue(u *models.User) (*services.AuthResult, error) {
	token, err := auth.GenerateToken(u.ID, u.Email, []byte(testSecret), time.Minute)
	if err != nil {
		return nil, err
	}
	return &services.AuthResult{Token: token, User: u}, nil
}

func (f *fakeUsers) Register(ctx context.Context, email, password string) (*services.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.seq++
	u := &models.User{ID: fmt.Sprintf("u%d", f.seq), Email: email}
	f.users[email] = u
	f.pass[email] = password
	return f.issue(u)
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[email]
	if !ok || f.pass[email] != password {
		return nil, common.ErrorUnauthorized
	}
	return f.issue(u)
}

func (f *fakeUsers) Me(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, common.ErrorUnauthorized
}

func (f *fakeUsers) Verify(token string) (*auth.Identity, error) {
	return auth.ParseToken(token, []byte(testSecret))
}

type fakeSummaries struct {
	mu    sync.Mutex
	items []*models.Summary
	seq   int

	listErr    error
	lastParams services.ListParams
	archiveErr error
}

func (f *fakeSummaries) find(id string) *models.Summary {
	for _, s := range f.items {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (f *fakeSummaries) Create(ctx context.Context, ownerID string, in services.SummaryInput) (*models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(in.Tags) > 10 {
		return nil, common.ValidationErrorf("tags must have at most 10 items")
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	f.seq++
	now := time.Date(2024, 1, 1, 0, 0, f.seq, 0, time.UTC)
	s := &models.Summary{
		ID: fmt.Sprintf("s%d", f.seq), OwnerID: ownerID,
		Note: in.Note, Summary: in.Summary, Tags: in.Tags,
		CreatedAt: now, UpdatedAt: now,
	}
	f.items = append(f.items, s)
	return s, nil
}

func (f *fakeSummaries) List(ctx context.Context, p services.ListParams) (*models.SummaryPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastParams = p
	if f.listErr != nil {
		return nil, f.listErr
	}
	if _, err := services.ParseSort(p.Sort); err != nil {
		return nil, err
	}

	var out []*models.Summary
	for _, s := range slices.Backward(f.items) {
		if p.OwnerID != "" && s.OwnerID != p.OwnerID {
			continue
		}
		if p.Query != "" && !strings.Contains(strings.ToLower(s.Note+" "+s.Summary), strings.ToLower(p.Query)) {
			continue
		}
		out = append(out, s)
	}

	if !p.Paginated() {
		return &models.SummaryPage{Items: out, Page: 1, Pages: 1, Total: len(out)}, nil
	}

	total := len(out)
	from := min((p.Page-1)*p.Limit, total)
	to := min(from+p.Limit, total)
	return &models.SummaryPage{
		Items: out[from:to],
		Page:  p.Page,
		Pages: (total + p.Limit - 1) / p.Limit,
		Total: total,
	}, nil
}

func (f *fakeSummaries) Update(ctx context.Context, id, ownerID string, patch models.SummaryPatch) (*models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.find(id)
	if s == nil || s.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	if patch.Note != nil {
		if *patch.Note == "" {
			return nil, common.ValidationErrorf("note is required")
		}
		s.Note = *patch.Note
	}
	if patch.Summary != nil {
		s.Summary = *patch.Summary
	}
	if patch.Tags != nil {
		s.Tags = *patch.Tags
	}
	if patch.Starred != nil {
		s.Starred = *patch.Starred
	}
	return s, nil
}

func (f *fakeSummaries) Delete(ctx context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.find(id)
	if s == nil || s.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	f.items = slices.DeleteFunc(f.items, func(x *models.Summary) bool { return x.ID == id })
	return nil
}

func (f *fakeSummaries) SetStarred(ctx context.Context, id string, starred *bool) (*models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.find(id)
	if s == nil {
		return nil, common.ErrorNotFound
	}
	if starred == nil {
		s.Starred = !s.Starred
	} else {
		s.Starred = *starred
	}
	return s, nil
}

func (f *fakeSummaries) Share(ctx context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.find(id)
	if s == nil {
		return "", common.ErrorNotFound
	}
	f.seq++
	slug := fmt.Sprintf("slug%06d", f.seq)
	s.Slug = &slug
	return slug, nil
}

func (f *fakeSummaries) GetBySlug(ctx context.Context, slug string) (*models.PublicSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.items {
		if s.Slug != nil && *s.Slug == slug {
			return s.Public(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSummaries) Export(ctx context.Context, id, ownerID string, format export.Format) (*export.Document, error) {
	f.mu.Lock()
	s := f.find(id)
	f.mu.Unlock()

	if s == nil || s.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return export.Render(s, format)
}

func (f *fakeSummaries) Archive(ctx context.Context, id, ownerID string, format export.Format) (*export.Archived, error) {
	if f.archiveErr != nil {
		return nil, f.archiveErr
	}
	doc, err := f.Export(ctx, id, ownerID, format)
	if err != nil {
		return nil, err
	}
	return &export.Archived{Key: "users/" + ownerID + "/" + doc.Filename, URL: "https://s3.example/" + doc.Filename}, nil
}

type fakeSummarizer struct {
	out string
	err error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	return f.out, f.err
}
