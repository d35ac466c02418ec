// Package services contains application services for the notesum client.
// This file defines the session service: register, login, logout and the
// restore of a session kept in the local state file.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notesum/internal/client/client"
	"github.com/dmitrijs2005/notesum/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/notesum/internal/dbx"
)

// SessionService manages who the client is signed in as.
//
// Contract:
//   - Register and Login authenticate against the server and persist the
//     session token locally.
//   - Restore reloads a persisted session, if any.
//   - Logout forgets the session but keeps the unsent draft.
//   - Ping checks server liveness.
type SessionService interface {
	Register(ctx context.Context, email string, password []byte) (string, error)
	Login(ctx context.Context, email string, password []byte) (string, error)
	Restore(ctx context.Context) (string, bool, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type sessionService struct {
	client client.Client
	db     *sql.DB
}

func NewSessionService(c client.Client, db *sql.DB) SessionService {
	return &sessionService{client: c, db: db}
}

func (s *sessionService) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// save stores token and email in a single transaction and starts using the
// token.
func (s *sessionService) save(ctx context.Context, sess *client.Session) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, metadata.KeyToken, sess.Token); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyEmail, sess.User.Email)
	})
	if err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}

	s.client.SetToken(sess.Token)
	return nil
}

// Register creates an account and signs in as it. It returns the email the
// server registered.
func (s *sessionService) Register(ctx context.Context, email string, password []byte) (string, error) {
	sess, err := s.client.Register(ctx, strings.TrimSpace(email), string(password))
	if err != nil {
		return "", err
	}
	if err := s.save(ctx, sess); err != nil {
		return "", err
	}
	return sess.User.Email, nil
}

func (s *sessionService) Login(ctx context.Context, email string, password []byte) (string, error) {
	sess, err := s.client.Login(ctx, strings.TrimSpace(email), string(password))
	if err != nil {
		return "", fmt.Errorf("login error: %w", err)
	}
	if err := s.save(ctx, sess); err != nil {
		return "", err
	}
	return sess.User.Email, nil
}

// Restore reloads the persisted session and reports the email it belongs to.
// The token is not checked against the server; an expired one surfaces as
// client.ErrUnauthorized on the next call.
func (s *sessionService) Restore(ctx context.Context) (string, bool, error) {
	repo := s.repo(s.db)

	token, ok, err := repo.Get(ctx, metadata.KeyToken)
	if err != nil || !ok {
		return "", false, err
	}
	email, _, err := repo.Get(ctx, metadata.KeyEmail)
	if err != nil {
		return "", false, err
	}

	s.client.SetToken(token)
	return email, true, nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	s.client.SetToken("")
	return s.repo(s.db).Delete(ctx, metadata.KeyToken, metadata.KeyEmail)
}

// Ping proxies a liveness check to the underlying client.
func (s *sessionService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// IsSessionError reports whether err means the session is gone or invalid.
func IsSessionError(err error) bool {
	return errors.Is(err, client.ErrUnauthorized)
}
