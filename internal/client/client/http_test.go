package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_SendsCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, credentials{"a@example.com", "secret1"}, in)

		writeJSON(w, http.StatusOK, map[string]any{"token": "tok", "user": map[string]string{"id": "u1", "email": "a@example.com"}})
	})

	s, err := c.Login(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, User{ID: "u1", Email: "a@example.com"}, s.User)
}

func TestToken_SentAsBearer(t *testing.T) {
	var got []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []any{})
	})

	_, err := c.ListSummaries(context.Background(), "", false)
	require.NoError(t, err)

	c.SetToken("tok")
	_, err = c.ListSummaries(context.Background(), "", true)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer tok"}, got)
}

func TestListSummaries_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summaries", r.URL.Path)
		assert.Equal(t, "meeting notes", r.URL.Query().Get("q"))
		assert.Equal(t, "me", r.URL.Query().Get("owner"))
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "s1", "note": "n", "summary": "s", "tags": []string{"x"}}})
	})

	list, err := c.ListSummaries(context.Background(), "meeting notes", true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "s1", list[0].ID)
	assert.Equal(t, []string{"x"}, list[0].Tags)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		msg    string
	}{
		{"401", http.StatusUnauthorized, `{"message":"Token expired"}`, ErrUnauthorized, "unauthorized: Token expired"},
		{"404", http.StatusNotFound, `{"message":"Summary not found"}`, ErrNotFound, "not found: Summary not found"},
		{"503", http.StatusServiceUnavailable, `{"message":"Feature is not configured"}`, ErrUnavailable, "server unavailable: Feature is not configured"},
		{"non-json", http.StatusUnauthorized, `oops`, ErrUnauthorized, "unauthorized: Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.DeleteSummary(context.Background(), "s1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestErrorMapping_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "note is required"})
	})

	_, err := c.CreateSummary(context.Background(), "", "s", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "note is required", apiErr.Message)
}

func TestUnavailable_OnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, time.Second)
	err := c.Ping(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestShareAndGetShared(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/summaries/s1/share":
			assert.Equal(t, http.MethodPost, r.Method)
			writeJSON(w, http.StatusOK, map[string]string{"slug": "abcdefghij"})
		case "/s/abcdefghij":
			writeJSON(w, http.StatusOK, map[string]any{"note": "n", "summary": "s", "tags": []string{}})
		default:
			http.NotFound(w, r)
		}
	})

	slug, err := c.Share(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij", slug)

	s, err := c.GetShared(context.Background(), slug)
	require.NoError(t, err)
	assert.Equal(t, "s", s.Summary)
}

func TestToggleStar_SendsNoBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/summaries/s1/star", r.URL.Path)
		assert.Zero(t, r.ContentLength)
		writeJSON(w, http.StatusOK, map[string]any{"id": "s1", "starred": true})
	})

	s, err := c.ToggleStar(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, s.Starred)
}

func TestSummarize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "long text", in["text"])
		assert.NotContains(t, in, "maxWords")
		writeJSON(w, http.StatusOK, map[string]string{"summary": "short"})
	})

	out, err := c.Summarize(context.Background(), "long text", 0)
	require.NoError(t, err)
	assert.Equal(t, "short", out)
}

func TestExport_FilenameFromHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "html", r.URL.Query().Get("format"))
		w.Header().Set("Content-Disposition", `attachment; filename="summary-1234abcd.html"`)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<p>hi</p>"))
	})

	f, err := c.Export(context.Background(), "s1", "html")
	require.NoError(t, err)
	assert.Equal(t, "summary-1234abcd.html", f.Filename)
	assert.Equal(t, "<p>hi</p>", string(f.Body))
}
