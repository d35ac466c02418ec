// Package export renders summaries as downloadable documents and archives
// them to S3-compatible object storage.
package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dmitrijs2005/notesum/internal/common"
	"github.com/dmitrijs2005/notesum/internal/server/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format is an export file format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatHTML     Format = "html"
)

// ParseFormat accepts md, markdown, txt, text and html, case-insensitively.
// An empty string selects Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", common.ValidationErrorf("unsupported export format %q", s)
	}
}

// Document is a rendered export.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Render produces the document for s in format f.
func Render(s *models.Summary, f Format) (*Document, error) {
	name := "summary-" + shortID(s.ID)

	switch f {
	case FormatMarkdown:
		return &Document{
			Filename:    name + ".md",
			ContentType: "text/markdown; charset=utf-8",
			Body:        renderMarkdown(s),
		}, nil

	case FormatText:
		return &Document{
			Filename:    name + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        renderText(s),
		}, nil

	case FormatHTML:
		var body bytes.Buffer
		if err := markdown.Convert(renderMarkdown(s), &body); err != nil {
			return nil, fmt.Errorf("rendering html: %w", err)
		}

		var doc bytes.Buffer
		doc.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
		doc.WriteString(html.EscapeString(title(s)))
		doc.WriteString("</title></head><body>\n")
		doc.Write(body.Bytes())
		doc.WriteString("</body></html>\n")

		return &Document{
			Filename:    name + ".html",
			ContentType: "text/html; charset=utf-8",
			Body:        doc.Bytes(),
		}, nil

	default:
		return nil, common.ValidationErrorf("unsupported export format %q", string(f))
	}
}

func renderMarkdown(s *models.Summary) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title(s))
	fmt.Fprintf(&b, "_Created %s_\n\n", s.CreatedAt.UTC().Format(time.RFC1123))
	if len(s.Tags) > 0 {
		tags := make([]string, len(s.Tags))
		for i, t := range s.Tags {
			tags[i] = "`" + t + "`"
		}
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(tags, " "))
	}
	b.WriteString("## Summary\n\n")
	b.WriteString(strings.TrimSpace(s.Summary))
	b.WriteString("\n\n## Original note\n\n")
	b.WriteString(strings.TrimSpace(s.Note))
	b.WriteString("\n")

	return []byte(b.String())
}

func renderText(s *models.Summary) []byte {
	var b strings.Builder

	b.WriteString(title(s) + "\n")
	fmt.Fprintf(&b, "Created: %s\n", s.CreatedAt.UTC().Format(time.RFC1123))
	if len(s.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(s.Tags, ", "))
	}
	b.WriteString("\nSUMMARY\n\n")
	b.WriteString(strings.TrimSpace(s.Summary))
	b.WriteString("\n\nORIGINAL NOTE\n\n")
	b.WriteString(strings.TrimSpace(s.Note))
	b.WriteString("\n")

	return []byte(b.String())
}

// title is the first line of the summary, cut to 80 runes.
func title(s *models.Summary) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s.Summary), "\n")
	r := []rune(strings.TrimSpace(line))
	if len(r) > 80 {
		return string(r[:79]) + "…"
	}
	if len(r) == 0 {
		return "Summary"
	}
	return string(r)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
