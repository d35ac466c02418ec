package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notesum/internal/client/client"
)

// readNote asks for a note. An empty answer reuses the saved draft.
func (a *App) readNote(ctx context.Context) (string, error) {
	prompt := "Enter note"
	draft, hasDraft, err := a.noteService.Draft(ctx)
	if err != nil {
		return "", err
	}
	if hasDraft {
		prompt = fmt.Sprintf("Enter note (empty to reuse the unsent draft, %d characters)", len(draft))
	}

	note, err := GetMultiline(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if note == "" {
		if !hasDraft {
			return "", fmt.Errorf("note is empty")
		}
		note = draft
	}
	return note, nil
}

// Summarize asks the server for a summary of a note. The note is kept as a
// draft, so a failure can be retried without retyping it.
func (a *App) Summarize(ctx context.Context) error {
	if err := a.requireLogin(ctx, nil); err != nil {
		return err
	}

	note, err := a.readNote(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Summarizing...")
	summary, err := a.noteService.Summarize(ctx, note, 0)
	if err != nil {
		return a.requireLogin(ctx, fmt.Errorf("%w (the note is kept, run summarize again to retry)", err))
	}

	a.mu.Lock()
	a.last = &pending{note: note, summary: summary}
	a.mu.Unlock()

	fmt.Fprintln(a.out, "\nSummary:\n"+summary+"\n\nType 'save' to store it.")
	return nil
}

// Save stores the last summary, or a note and summary typed by hand.
func (a *App) Save(ctx context.Context) error {
	if err := a.requireLogin(ctx, nil); err != nil {
		return err
	}

	a.mu.Lock()
	last := a.last
	a.mu.Unlock()

	var note, summary string
	if last != nil {
		note, summary = last.note, last.summary
	} else {
		var err error
		if note, err = a.readNote(ctx); err != nil {
			return err
		}
		if summary, err = GetMultiline(a.reader, "Enter summary", a.out); err != nil {
			return err
		}
	}

	tags, err := getSimpleText(a.reader, "Tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}

	saved, err := a.noteService.Save(ctx, note, summary, ParseTags(tags))
	if err != nil {
		return a.requireLogin(ctx, err)
	}

	a.mu.Lock()
	a.last = nil
	a.mu.Unlock()

	fmt.Fprintln(a.out, "Saved as", saved.ID)
	return nil
}

func firstLine(s string, max int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

func formatSummary(s *client.Summary) string {
	star := " "
	if s.Starred {
		star = "*"
	}
	line := fmt.Sprintf("%s %s  %s  %s", star, s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), firstLine(s.Summary, 60))
	if len(s.Tags) > 0 {
		line += "  [" + strings.Join(s.Tags, ", ") + "]"
	}
	return line
}

// List prints summaries matching query, newest first.
func (a *App) List(ctx context.Context, query string, mine bool) error {
	if mine {
		if err := a.requireLogin(ctx, nil); err != nil {
			return err
		}
	}

	items, err := a.noteService.List(ctx, query, mine)
	if err != nil {
		return a.requireLogin(ctx, err)
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "No summaries found")
		return nil
	}
	for _, s := range items {
		fmt.Fprintln(a.out, formatSummary(s))
	}
	return nil
}

// Star flips the starred flag of a summary.
func (a *App) Star(ctx context.Context, id string) error {
	s, err := a.noteService.ToggleStar(ctx, id)
	if err != nil {
		return err
	}
	if s.Starred {
		fmt.Fprintln(a.out, "Starred", s.ID)
	} else {
		fmt.Fprintln(a.out, "Unstarred", s.ID)
	}
	return nil
}

// Share prints a fresh public link slug. Older slugs stop working.
func (a *App) Share(ctx context.Context, id string) error {
	slug, err := a.noteService.Share(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Shared: %s/s/%s\n", strings.TrimRight(a.config.ServerURL, "/"), slug)
	return nil
}

// Show prints a shared summary.
func (a *App) Show(ctx context.Context, slug string) error {
	s, err := a.noteService.Show(ctx, slug)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Summary:\n"+s.Summary)
	if len(s.Tags) > 0 {
		fmt.Fprintln(a.out, "Tags:", strings.Join(s.Tags, ", "))
	}
	fmt.Fprintln(a.out, "\nNote:\n"+s.Note)
	return nil
}

// Delete removes one of the caller's summaries.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.requireLogin(ctx, nil); err != nil {
		return err
	}
	if err := a.noteService.Delete(ctx, id); err != nil {
		return a.requireLogin(ctx, err)
	}
	fmt.Fprintln(a.out, "Deleted", id)
	return nil
}

// Export downloads one of the caller's summaries into the export directory.
func (a *App) Export(ctx context.Context, id, format string) error {
	if err := a.requireLogin(ctx, nil); err != nil {
		return err
	}
	path, err := a.noteService.Export(ctx, id, format)
	if err != nil {
		return a.requireLogin(ctx, err)
	}
	fmt.Fprintln(a.out, "Written to", path)
	return nil
}
