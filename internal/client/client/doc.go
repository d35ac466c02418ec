// Package client talks to the notesum REST API and bootstraps the client's
// local SQLite state file.
//
// Common conditions are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable for transport failures, ErrUnauthorized for 401 answers and
// ErrNotFound for 404 answers. Any other failure status is an *APIError
// carrying the server's message.
package client
