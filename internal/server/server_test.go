package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriChat/internal/chatapi"
)

type fakeCompleter struct {
	mu      sync.Mutex
	calls   int
	replies []string
	errs    []error
}

func (f *fakeCompleter) Complete(ctx context.Context, model, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "echo: " + message, nil
}

func (f *fakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var fixedNow = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

func newTestServer(t *testing.T, completer Completer, mutate func(*Options)) *httptest.Server {
	t.Helper()
	opts := Options{
		DefaultModel: "gpt-4",
		Models:       []string{"gpt-4", "qwen/qwen3-coder:free"},
		MaxRetries:   3,
		Backoff:      func(int) time.Duration { return 0 },
		Now:          fixedNow,
	}
	if mutate != nil {
		mutate(&opts)
	}
	ts := httptest.NewServer(New(completer, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postChat(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+chatapi.ChatPath, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestChatSuccess(t *testing.T) {
	ts := newTestServer(t, &fakeCompleter{replies: []string{"Hi there"}}, nil)

	resp, out := postChat(t, ts, `{"message":"Hello","model":"gpt-4"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Hi there", out["response"])
	assert.Equal(t, "gpt-4", out["model"])
	assert.Equal(t, "2025-01-02T03:04:05", out["timestamp"])
}

func TestChatDefaultModel(t *testing.T) {
	ts := newTestServer(t, &fakeCompleter{}, nil)

	_, out := postChat(t, ts, `{"message":"Hello"}`)

	assert.Equal(t, "gpt-4", out["model"])
}

func TestChatValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"message":`, chatapi.CodeInvalidRequest},
		{"blank", `{"message":"   ","model":"gpt-4"}`, chatapi.CodeInvalidRequest},
		{"too long", `{"message":"` + strings.Repeat("a", MaxMessageLength+1) + `","model":"gpt-4"}`, chatapi.CodeInvalidRequest},
		{"unknown model", `{"message":"Hello","model":"nope"}`, chatapi.CodeModelNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{}
			ts := newTestServer(t, completer, nil)

			resp, out := postChat(t, ts, tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tt.code, out["errorCode"])
			assert.Equal(t, chatapi.ChatPath, out["path"])
			assert.Zero(t, completer.Calls())
		})
	}
}

func TestChatRetriesThenSucceeds(t *testing.T) {
	completer := &fakeCompleter{
		errs:    []error{errors.New("boom"), errors.New("boom")},
		replies: []string{"", "", "third time"},
	}
	ts := newTestServer(t, completer, nil)

	resp, out := postChat(t, ts, `{"message":"Hello","model":"gpt-4"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "third time", out["response"])
	assert.Equal(t, 3, completer.Calls())
}

func TestChatUpstreamFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
		friendly string
	}{
		{"timeout", context.DeadlineExceeded, "timeout", chatapi.MsgTimeout},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}, "401", chatapi.MsgAuth},
		{"rate limited", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, "429", chatapi.MsgRateLimited},
		{"server", &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, "502", chatapi.MsgUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Two requests, three attempts each.
			completer := &fakeCompleter{errs: []error{tt.err, tt.err, tt.err, tt.err, tt.err, tt.err}}
			ts := newTestServer(t, completer, nil)

			resp, out := postChat(t, ts, `{"message":"Hello","model":"gpt-4"}`)

			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
			assert.Equal(t, chatapi.CodeAPIConnection, out["errorCode"])
			assert.Contains(t, out["error"], tt.contains)
			assert.Equal(t, 3, completer.Calls())

			// The widget's client maps the body to a friendly message.
			_, err := chatapi.NewClient(ts.URL).Chat(context.Background(), "Hello", "gpt-4")
			assert.Equal(t, tt.friendly, chatapi.Classify(err))
		})
	}
}

func TestChatEmptyReply(t *testing.T) {
	ts := newTestServer(t, &fakeCompleter{replies: []string{"  "}}, nil)

	resp, out := postChat(t, ts, `{"message":"Hello","model":"gpt-4"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, out["success"])
	assert.NotEmpty(t, out["error"])
}

func TestChatRateLimited(t *testing.T) {
	ts := newTestServer(t, &fakeCompleter{}, func(o *Options) {
		o.RateLimit = 0.001
		o.Burst = 1
	})

	first, _ := postChat(t, ts, `{"message":"Hello","model":"gpt-4"}`)
	second, out := postChat(t, ts, `{"message":"Hello","model":"gpt-4"}`)

	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, chatapi.CodeRateLimited, out["errorCode"])

	_, err := chatapi.NewClient(ts.URL).Chat(context.Background(), "Hello", "gpt-4")
	assert.Equal(t, chatapi.MsgRateLimited, chatapi.Classify(err))
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &fakeCompleter{}, nil)

	resp, err := http.Get(ts.URL + chatapi.ChatPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
}

func TestModelsEndpoints(t *testing.T) {
	ts := newTestServer(t, &fakeCompleter{}, nil)
	client := chatapi.NewClient(ts.URL)
	ctx := context.Background()

	models, err := client.Models(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4", "qwen/qwen3-coder:free"}, models)

	ok, err := client.ModelAvailable(ctx, "qwen/qwen3-coder:free")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.ModelAvailable(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, HealthText, health)
}

func TestRequestIDIsPropagated(t *testing.T) {
	ts := newTestServer(t, &fakeCompleter{}, nil)

	req, err := http.NewRequest(http.MethodGet, ts.URL+chatapi.HealthPath, nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc", resp.Header.Get(RequestIDHeader))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(&fakeCompleter{}, Options{Models: []string{"m"}})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	u := url.URL{Scheme: "http", Host: ln.Addr().String(), Path: chatapi.HealthPath}
	require.Eventually(t, func() bool {
		resp, err := http.Get(u.String())
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return string(body) == HealthText
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestExponentialBackoff(t *testing.T) {
	assert.Equal(t, time.Second, ExponentialBackoff(1))
	assert.Equal(t, 2*time.Second, ExponentialBackoff(2))
	assert.Equal(t, 4*time.Second, ExponentialBackoff(3))
}
