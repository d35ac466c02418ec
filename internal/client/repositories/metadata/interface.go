// Package metadata persists the client's small key/value state: the session
// token, the signed-in email and an unsent draft note.
package metadata

import "context"

// Well-known keys.
const (
	KeyToken = "session.token"
	KeyEmail = "session.email"
	KeyDraft = "draft.note"
)

// Repository is a string key/value store. Get returns "" and false for an
// absent key.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
