package services

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/notesum/internal/client/client"
	"github.com/dmitrijs2005/notesum/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/notesum/internal/filex"
)

// NoteService drives the note workflow: the typed note is kept as a local
// draft until it has been saved on the server, so a failed summarize or save
// can be retried without retyping it.
type NoteService interface {
	Draft(ctx context.Context) (string, bool, error)
	SetDraft(ctx context.Context, note string) error
	Summarize(ctx context.Context, note string, maxWords int) (string, error)
	Save(ctx context.Context, note, summary string, tags []string) (*client.Summary, error)
	List(ctx context.Context, query string, mine bool) ([]*client.Summary, error)
	ToggleStar(ctx context.Context, id string) (*client.Summary, error)
	Share(ctx context.Context, id string) (string, error)
	Show(ctx context.Context, slug string) (*client.SharedSummary, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id, format string) (string, error)
}

type noteService struct {
	client    client.Client
	db        *sql.DB
	exportDir string
}

func NewNoteService(c client.Client, db *sql.DB, exportDir string) NoteService {
	return &noteService{client: c, db: db, exportDir: exportDir}
}

func (s *noteService) drafts() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *noteService) Draft(ctx context.Context) (string, bool, error) {
	return s.drafts().Get(ctx, metadata.KeyDraft)
}

func (s *noteService) SetDraft(ctx context.Context, note string) error {
	return s.drafts().Set(ctx, metadata.KeyDraft, note)
}

// Summarize stores note as the draft and asks the server for a summary.
func (s *noteService) Summarize(ctx context.Context, note string, maxWords int) (string, error) {
	if err := s.SetDraft(ctx, note); err != nil {
		return "", err
	}

	summary, err := s.client.Summarize(ctx, note, maxWords)
	if err != nil {
		return "", fmt.Errorf("summarize error: %w", err)
	}
	return summary, nil
}

// Save stores the summary on the server and drops the draft once it has
// been accepted.
func (s *noteService) Save(ctx context.Context, note, summary string, tags []string) (*client.Summary, error) {
	if err := s.SetDraft(ctx, note); err != nil {
		return nil, err
	}

	saved, err := s.client.CreateSummary(ctx, note, summary, tags)
	if err != nil {
		return nil, fmt.Errorf("save error: %w", err)
	}

	if err := s.drafts().Delete(ctx, metadata.KeyDraft); err != nil {
		return saved, err
	}
	return saved, nil
}

func (s *noteService) List(ctx context.Context, query string, mine bool) ([]*client.Summary, error) {
	return s.client.ListSummaries(ctx, strings.TrimSpace(query), mine)
}

func (s *noteService) ToggleStar(ctx context.Context, id string) (*client.Summary, error) {
	return s.client.ToggleStar(ctx, id)
}

func (s *noteService) Share(ctx context.Context, id string) (string, error) {
	return s.client.Share(ctx, id)
}

func (s *noteService) Show(ctx context.Context, slug string) (*client.SharedSummary, error) {
	return s.client.GetShared(ctx, slug)
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	return s.client.DeleteSummary(ctx, id)
}

// Export downloads a summary into the export directory and returns the path
// of the written file.
func (s *noteService) Export(ctx context.Context, id, format string) (string, error) {
	f, err := s.client.Export(ctx, id, format)
	if err != nil {
		return "", err
	}

	dir, err := filex.EnsureSubdDir(s.exportDir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.Base(f.Filename))
	if err := os.WriteFile(path, f.Body, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
