package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notesum/internal/client/client"
	"github.com/dmitrijs2005/notesum/internal/client/services"
	"github.com/dmitrijs2005/notesum/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register prompts for an email and password, creates the account and signs
// in as it.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	email, err = a.sessionService.Register(ctx, email, password)
	if err != nil {
		return err
	}

	a.setEmail(email)
	fmt.Fprintln(a.out, "Registered and logged in as", email)
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	email, err = a.sessionService.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}

	a.setEmail(email)
	fmt.Fprintln(a.out, "Logged in as", email)
	return nil
}

// Logout forgets the saved session. An unsent draft survives.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessionService.Logout(ctx); err != nil {
		return err
	}
	a.setEmail("")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// requireLogin fails early for commands that need a session, and forgets a
// session the server no longer accepts.
func (a *App) requireLogin(ctx context.Context, err error) error {
	if err == nil {
		if !a.isLoggedIn() {
			return errors.New("please log in first")
		}
		return nil
	}

	if services.IsSessionError(err) && a.isLoggedIn() {
		_ = a.sessionService.Logout(ctx)
		a.setEmail("")
		return fmt.Errorf("%w, please log in again", err)
	}
	return err
}
