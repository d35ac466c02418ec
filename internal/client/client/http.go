package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/notesum/internal/common"
)

const maxErrorBody = 4 << 10

// HTTPClient is the REST implementation of Client. It is safe for concurrent
// use.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with every request; "" clears it.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// send performs the request and maps failures onto the package errors. The
// caller closes the body of a successful response.
func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, in any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}
	defer resp.Body.Close()

	return nil, responseError(resp)
}

func responseError(resp *http.Response) error {
	var e struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(raw, &e) != nil || e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, e.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, e.Message)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, e.Message)
	default:
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}
}

// do sends in as JSON and decodes the answer into out, when out is not nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	resp, err := c.send(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, credentials{email, password}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, credentials{email, password}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	in := struct {
		Text     string `json:"text"`
		MaxWords int    `json:"maxWords,omitempty"`
	}{text, maxWords}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.do(ctx, http.MethodPost, "/summarize", nil, in, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (c *HTTPClient) CreateSummary(ctx context.Context, note, summary string, tags []string) (*Summary, error) {
	in := struct {
		Note    string   `json:"note"`
		Summary string   `json:"summary"`
		Tags    []string `json:"tags,omitempty"`
	}{note, summary, tags}

	var s Summary
	if err := c.do(ctx, http.MethodPost, "/summaries", nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSummaries returns every match of query, newest first. With mine only
// the caller's summaries are listed.
func (c *HTTPClient) ListSummaries(ctx context.Context, query string, mine bool) ([]*Summary, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if mine {
		q.Set("owner", "me")
	}

	var out []*Summary
	if err := c.do(ctx, http.MethodGet, "/summaries", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ToggleStar(ctx context.Context, id string) (*Summary, error) {
	var s Summary
	if err := c.do(ctx, http.MethodPatch, "/summaries/"+url.PathEscape(id)+"/star", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Share(ctx context.Context, id string) (string, error) {
	var out struct {
		Slug string `json:"slug"`
	}
	if err := c.do(ctx, http.MethodPost, "/summaries/"+url.PathEscape(id)+"/share", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Slug, nil
}

func (c *HTTPClient) GetShared(ctx context.Context, slug string) (*SharedSummary, error) {
	var s SharedSummary
	if err := c.do(ctx, http.MethodGet, "/s/"+url.PathEscape(slug), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) DeleteSummary(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/summaries/"+url.PathEscape(id), nil, nil, nil)
}

// Export downloads a rendered summary. The file name comes from the
// Content-Disposition header and falls back to the id.
func (c *HTTPClient) Export(ctx context.Context, id, format string) (*ExportedFile, error) {
	q := url.Values{}
	if format != "" {
		q.Set("format", format)
	}

	resp, err := c.send(ctx, http.MethodGet, "/summaries/"+url.PathEscape(id)+"/export", q, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	name := "summary-" + id
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}

	return &ExportedFile{Filename: name, Body: body}, nil
}
