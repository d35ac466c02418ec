package cli

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/notesum/internal/client/client"
	"github.com/dmitrijs2005/notesum/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	email     string
	loginErr  error
	pingErr   error
	loggedOut bool
	password  []byte
}

func (f *fakeSession) Register(ctx context.Context, email string, password []byte) (string, error) {
	f.password = password
	return email, f.loginErr
}

func (f *fakeSession) Login(ctx context.Context, email string, password []byte) (string, error) {
	f.password = password
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return email, nil
}

func (f *fakeSession) Restore(ctx context.Context) (string, bool, error) {
	return f.email, f.email != "", nil
}

func (f *fakeSession) Logout(ctx context.Context) error {
	f.loggedOut = true
	return nil
}

func (f *fakeSession) Ping(ctx context.Context) error { return f.pingErr }

type fakeNotes struct {
	draft        string
	summarizeErr error
	listErr      error
	saved        []string
	savedTags    []string
	items        []*client.Summary
}

func (f *fakeNotes) Draft(ctx context.Context) (string, bool, error) {
	return f.draft, f.draft != "", nil
}

func (f *fakeNotes) SetDraft(ctx context.Context, note string) error {
	f.draft = note
	return nil
}

func (f *fakeNotes) Summarize(ctx context.Context, note string, maxWords int) (string, error) {
	f.draft = note
	if f.summarizeErr != nil {
		return "", f.summarizeErr
	}
	return "short: " + note, nil
}

func (f *fakeNotes) Save(ctx context.Context, note, summary string, tags []string) (*client.Summary, error) {
	f.saved = append(f.saved, note+"|"+summary)
	f.savedTags = tags
	f.draft = ""
	return &client.Summary{ID: "s1", Note: note, Summary: summary, Tags: tags}, nil
}

func (f *fakeNotes) List(ctx context.Context, query string, mine bool) ([]*client.Summary, error) {
	return f.items, f.listErr
}

func (f *fakeNotes) ToggleStar(ctx context.Context, id string) (*client.Summary, error) {
	return &client.Summary{ID: id, Starred: true}, nil
}

func (f *fakeNotes) Share(ctx context.Context, id string) (string, error) { return "abcdefghij", nil }

func (f *fakeNotes) Show(ctx context.Context, slug string) (*client.SharedSummary, error) {
	return &client.SharedSummary{Note: "long note", Summary: "short", Tags: []string{"go"}}, nil
}

func (f *fakeNotes) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeNotes) Export(ctx context.Context, id, format string) (string, error) {
	return "exports/" + id + "." + format, nil
}

func newTestApp(input string) (*App, *fakeSession, *fakeNotes, *bytes.Buffer) {
	s := &fakeSession{}
	n := &fakeNotes{}
	out := &bytes.Buffer{}
	a := &App{
		config:         &config.Config{ServerURL: "http://localhost:8080/"},
		sessionService: s,
		noteService:    n,
		reader:         rdr(input),
		out:            out,
	}
	return a, s, n, out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = old })
}

func TestApp_GetStatus(t *testing.T) {
	a, _, _, _ := newTestApp("")
	assert.Equal(t, "", a.getStatus())

	a.setMode(ModeOnline)
	assert.Equal(t, "(online)", a.getStatus())

	a.setEmail("alice@example.com")
	assert.Equal(t, "(alice@example.com online)", a.getStatus())

	a.setMode(ModeOffline)
	assert.Equal(t, "(alice@example.com offline)", a.getStatus())
}

func TestApp_CheckOnline(t *testing.T) {
	a, s, _, _ := newTestApp("")

	a.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, a.mode)

	s.pingErr = client.ErrUnavailable
	a.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, a.mode)
}

func TestApp_OnlineWatcherStopsWithContext(t *testing.T) {
	a, _, _, _ := newTestApp("")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestApp_LoginWipesPassword(t *testing.T) {
	stubPassword(t, "secret123")
	a, s, _, out := newTestApp("alice@example.com\n")

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, make([]byte, len("secret123")), s.password)
	assert.Contains(t, out.String(), "Logged in as alice@example.com")
}

func TestApp_LoginFailureKeepsLoggedOut(t *testing.T) {
	stubPassword(t, "wrong")
	a, s, _, _ := newTestApp("alice@example.com\n")
	s.loginErr = client.ErrUnauthorized

	err := a.Login(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, a.isLoggedIn())
}

func TestApp_Logout(t *testing.T) {
	a, s, _, _ := newTestApp("")
	a.setEmail("alice@example.com")

	require.NoError(t, a.Logout(context.Background()))
	assert.True(t, s.loggedOut)
	assert.False(t, a.isLoggedIn())
}

func TestApp_CommandsNeedLogin(t *testing.T) {
	a, _, _, _ := newTestApp("")
	ctx := context.Background()

	assert.Error(t, a.Summarize(ctx))
	assert.Error(t, a.Save(ctx))
	assert.Error(t, a.List(ctx, "", true))
	assert.Error(t, a.Delete(ctx, "s1"))
	assert.Error(t, a.Export(ctx, "s1", "md"))
}

func TestApp_SummarizeThenSave(t *testing.T) {
	a, _, n, out := newTestApp("first line\nsecond line\n\ngo, notes\n")
	a.setEmail("alice@example.com")
	ctx := context.Background()

	require.NoError(t, a.Summarize(ctx))
	assert.Contains(t, out.String(), "short: first line\nsecond line")
	require.NotNil(t, a.last)

	require.NoError(t, a.Save(ctx))
	assert.Equal(t, []string{"first line\nsecond line|short: first line\nsecond line"}, n.saved)
	assert.Equal(t, []string{"go", "notes"}, n.savedTags)
	assert.Nil(t, a.last)
	assert.Contains(t, out.String(), "Saved as s1")
}

func TestApp_SummarizeReusesDraft(t *testing.T) {
	a, _, n, _ := newTestApp("\n")
	a.setEmail("alice@example.com")
	n.draft = "kept from last time"

	require.NoError(t, a.Summarize(context.Background()))
	assert.Equal(t, "short: kept from last time", a.last.summary)
}

func TestApp_SummarizeFailureKeepsDraft(t *testing.T) {
	a, _, n, _ := newTestApp("my note\n\n")
	a.setEmail("alice@example.com")
	n.summarizeErr = client.ErrUnavailable

	err := a.Summarize(context.Background())
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, "my note", n.draft)
	assert.Nil(t, a.last)
}

func TestApp_EmptyNoteWithoutDraft(t *testing.T) {
	a, _, _, _ := newTestApp("\n")
	a.setEmail("alice@example.com")

	require.Error(t, a.Summarize(context.Background()))
}

func TestApp_UnauthorizedDropsSession(t *testing.T) {
	a, s, n, _ := newTestApp("")
	a.setEmail("alice@example.com")
	n.listErr = client.ErrUnauthorized

	err := a.List(context.Background(), "", true)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.True(t, s.loggedOut)
	assert.False(t, a.isLoggedIn())
}

func TestApp_ListAndPublicCommands(t *testing.T) {
	a, _, n, out := newTestApp("")
	ctx := context.Background()

	require.NoError(t, a.List(ctx, "", false))
	assert.Contains(t, out.String(), "No summaries found")

	n.items = []*client.Summary{{ID: "s1", Summary: "first\nsecond", Starred: true, Tags: []string{"go"}}}
	require.NoError(t, a.List(ctx, "first", false))
	assert.Contains(t, out.String(), "* s1")
	assert.Contains(t, out.String(), "[go]")

	require.NoError(t, a.Star(ctx, "s1"))
	assert.Contains(t, out.String(), "Starred s1")

	require.NoError(t, a.Share(ctx, "s1"))
	assert.Contains(t, out.String(), "http://localhost:8080/s/abcdefghij")

	require.NoError(t, a.Show(ctx, "abcdefghij"))
	assert.Contains(t, out.String(), "long note")
}

func TestApp_DeleteAndExport(t *testing.T) {
	a, _, _, out := newTestApp("")
	a.setEmail("alice@example.com")
	ctx := context.Background()

	require.NoError(t, a.Delete(ctx, "s1"))
	assert.Contains(t, out.String(), "Deleted s1")

	require.NoError(t, a.Export(ctx, "s1", "md"))
	assert.Contains(t, out.String(), "exports/s1.md")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "abc", firstLine("  abc\ndef", 10))
	assert.Equal(t, "abcd…", firstLine("abcdefgh", 5))
}
