package client

import (
	"context"
	"time"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is what register and login hand back.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Summary struct {
	ID        string    `json:"id"`
	Note      string    `json:"note"`
	Summary   string    `json:"summary"`
	Tags      []string  `json:"tags"`
	Starred   bool      `json:"starred"`
	Slug      string    `json:"slug,omitempty"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SharedSummary is the public view behind a share slug.
type SharedSummary struct {
	Note      string    `json:"note"`
	Summary   string    `json:"summary"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportedFile is a downloaded export.
type ExportedFile struct {
	Filename string
	Body     []byte
}

type Client interface {
	SetToken(token string)
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Summarize(ctx context.Context, text string, maxWords int) (string, error)
	CreateSummary(ctx context.Context, note, summary string, tags []string) (*Summary, error)
	ListSummaries(ctx context.Context, query string, mine bool) ([]*Summary, error)
	ToggleStar(ctx context.Context, id string) (*Summary, error)
	Share(ctx context.Context, id string) (string, error)
	GetShared(ctx context.Context, slug string) (*SharedSummary, error)
	DeleteSummary(ctx context.Context, id string) error
	Export(ctx context.Context, id, format string) (*ExportedFile, error)
}
