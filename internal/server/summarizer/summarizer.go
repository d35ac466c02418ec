// Package summarizer asks an OpenAI-compatible chat completion API for a
// summary of a note.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/notesum/internal/common"
	"github.com/dmitrijs2005/notesum/internal/logging"
	"github.com/dmitrijs2005/notesum/internal/server/config"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultMaxWords = 120
	MinWords        = 10
	MaxWords        = 1000

	maxTextRunes = 20000
	temperature  = 0.2
)

const systemPrompt = "You summarize notes. Reply with the summary only, in the language of the note, " +
	"without preamble or closing remarks. Keep the key facts, names and numbers."

// Summarizer wraps a chat completion client.
type Summarizer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     logging.Logger
}

// New builds a Summarizer from the LLM settings in cfg.
func New(cfg *config.Config, log logging.Logger) *Summarizer {
	c := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		c.BaseURL = cfg.LLMBaseURL
	}

	return &Summarizer{
		client:  openai.NewClientWithConfig(c),
		model:   cfg.LLMModel,
		timeout: cfg.LLMTimeout,
		log:     log,
	}
}

// Summarize returns a summary of text of roughly maxWords words; zero selects
// DefaultMaxWords. Invalid input yields common.ErrorValidation, a failed or
// empty completion yields common.ErrorUpstream.
func (s *Summarizer) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", common.ValidationErrorf("text is required")
	}
	if utf8.RuneCountInString(text) > maxTextRunes {
		return "", common.ValidationErrorf("text must be at most %d characters", maxTextRunes)
	}
	if maxWords == 0 {
		maxWords = DefaultMaxWords
	}
	if maxWords < MinWords || maxWords > MaxWords {
		return "", common.ValidationErrorf("maxWords must be between %d and %d", MinWords, MaxWords)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Summarize the following note in at most %d words.\n\n%s", maxWords, text),
			},
		},
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		s.log.Error(ctx, "summarize failed", "model", s.model, "error", err, "latency_ms", latency.Milliseconds())

		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: %s", common.ErrorUpstream, apiErr.Message)
		}
		return "", fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", common.ErrorUpstream)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary", common.ErrorUpstream)
	}

	s.log.Debug(ctx, "summarize done", "model", s.model, "latency_ms", latency.Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return summary, nil
}
