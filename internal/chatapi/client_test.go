package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("")

	assert.Equal(t, DefaultEndpoint, c.Endpoint())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClient("http://example.com/", WithTimeout(5*time.Second))
	assert.Equal(t, "http://example.com", c.Endpoint())
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}

func TestTimeoutDoesNotModifySharedClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	tests := []struct {
		name string
		opts []Option
	}{
		{"timeout after client", []Option{WithHTTPClient(shared), WithTimeout(5 * time.Second)}},
		{"timeout before client", []Option{WithTimeout(5 * time.Second), WithHTTPClient(shared)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient("http://example.com", tt.opts...)

			assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
			assert.NotSame(t, shared, c.httpClient)
			assert.Equal(t, time.Minute, shared.Timeout)
		})
	}
}

func TestSharedClientWithoutTimeoutIsUsedAsIs(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c := NewClient("http://example.com", WithHTTPClient(shared))

	assert.Same(t, shared, c.httpClient)
}

func TestChatRequestContract(t *testing.T) {
	var got ChatRequest
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ChatPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"response":"Hi there","model":"gpt-4"}`)
	})

	resp, err := client.Chat(context.Background(), "Hello", "gpt-4")
	require.NoError(t, err)

	assert.Equal(t, ChatRequest{Message: "Hello", Model: "gpt-4"}, got)
	assert.Equal(t, "Hi there", resp.Response)
	assert.Equal(t, "gpt-4", resp.Model)
}

func TestChatFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    FailureKind
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "http error with payload",
			status:      http.StatusTooManyRequests,
			body:        `{"error":"rate limit"}`,
			wantKind:    KindHTTP,
			wantStatus:  429,
			wantMessage: "rate limit",
		},
		{
			name:        "http error without payload",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantKind:    KindHTTP,
			wantStatus:  502,
			wantMessage: "HTTP 502: Bad Gateway",
		},
		{
			name:        "http error with empty payload error",
			status:      http.StatusInternalServerError,
			body:        `{"success":false}`,
			wantKind:    KindHTTP,
			wantStatus:  500,
			wantMessage: "HTTP 500: Internal Server Error",
		},
		{
			name:        "application error",
			status:      http.StatusOK,
			body:        `{"success":false,"error":"model exploded"}`,
			wantKind:    KindApplication,
			wantStatus:  200,
			wantMessage: "model exploded",
		},
		{
			name:        "application error without message",
			status:      http.StatusOK,
			body:        `{"success":false}`,
			wantKind:    KindApplication,
			wantStatus:  200,
			wantMessage: "unknown error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})

			resp, err := client.Chat(context.Background(), "Hello", "gpt-4")
			assert.Nil(t, resp)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr), "error %v is not a RequestError", err)
			assert.Equal(t, tc.wantKind, reqErr.Kind)
			assert.Equal(t, tc.wantStatus, reqErr.StatusCode)
			assert.Equal(t, tc.wantMessage, reqErr.Message)
		})
	}
}

func TestChatDecodeFailure(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	})

	_, err := client.Chat(context.Background(), "Hello", "gpt-4")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, KindDecode, reqErr.Kind)
}

func TestChatNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := NewClient(endpoint).Chat(context.Background(), "Hello", "gpt-4")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, KindNetwork, reqErr.Kind)
	assert.Equal(t, MsgNetwork, Classify(err))
}

func TestChatTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := client.Chat(context.Background(), "Hello", "gpt-4")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, KindTimeout, reqErr.Kind)
	assert.Equal(t, MsgTimeout, Classify(err))
}

func TestChatCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, err := NewClient(srv.URL).Chat(ctx, "Hello", "gpt-4")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, KindCanceled, reqErr.Kind)
	assert.True(t, IsCanceled(err))
	assert.NotEqual(t, MsgNetwork, Classify(err))
}

func TestModels(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ModelsPath:
			io.WriteString(w, `["qwen/qwen3-coder:free","gpt-4"]`)
		case ModelsPath + "/gpt-4/available":
			io.WriteString(w, `true`)
		case ModelsPath + "/nope/available":
			io.WriteString(w, `false`)
		case HealthPath:
			io.WriteString(w, "Chat API is running\n")
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	models, err := client.Models(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"qwen/qwen3-coder:free", "gpt-4"}, models)

	ok, err := client.ModelAvailable(ctx, "gpt-4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.ModelAvailable(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Chat API is running", health)
}

func TestModelsHTTPError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Models(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 503, reqErr.StatusCode)
	assert.Equal(t, MsgUnavailable, Classify(err))
}
