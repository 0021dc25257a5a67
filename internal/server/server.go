// Package server is a development backend implementing the chat contract on
// top of an OpenAI-compatible upstream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Rorical/RoriChat/internal/chatapi"
)

const (
	// MaxMessageLength is the server-side limit in characters.
	MaxMessageLength = 4000

	RequestIDHeader = "X-Request-ID"
	HealthText      = "Chat API is running"

	timestampLayout = "2006-01-02T15:04:05"
	maxRequestBody  = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	DefaultModel string
	Models       []string
	MaxRetries   int
	RateLimit    float64 // requests per second on /api/chat; <= 0 disables limiting
	Burst        int
	Backoff      func(attempt int) time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

// ExponentialBackoff waits 1s, 2s, 4s... before retry attempt+1.
func ExponentialBackoff(attempt int) time.Duration {
	return time.Second << (attempt - 1)
}

type Server struct {
	completer Completer
	opts      Options
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func New(completer Completer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	if opts.Backoff == nil {
		opts.Backoff = ExponentialBackoff
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultModel == "" && len(opts.Models) > 0 {
		opts.DefaultModel = opts.Models[0]
	}

	s := &Server{
		completer: completer,
		opts:      opts,
		logger:    opts.Logger,
	}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(chatapi.ChatPath, s.allow(http.MethodPost, s.rateLimited(s.handleChat)))
	mux.HandleFunc(chatapi.ModelsPath, s.allow(http.MethodGet, s.handleModels))
	mux.HandleFunc(chatapi.ModelsPath+"/{model}/available", s.allow(http.MethodGet, s.handleModelAvailable))
	mux.HandleFunc(chatapi.HealthPath, s.allow(http.MethodGet, s.handleHealth))
	return s.withRequestID(mux)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("chat server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("chat server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type requestIDKey struct{}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return s.logger.With(zap.String("request_id", id), zap.String("path", r.URL.Path))
}

func (s *Server) allow(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			s.writeError(w, r, http.StatusMethodNotAllowed, chatapi.CodeMethodNotAllowed,
				fmt.Sprintf("method %s not supported, use %s", r.Method, method))
			return
		}
		next(w, r)
	}
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.requestLogger(r).Warn("rate limited")
			s.writeError(w, r, http.StatusTooManyRequests, chatapi.CodeRateLimited, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)

	var req chatapi.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, chatapi.CodeInvalidRequest, "malformed request body")
		return
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.opts.DefaultModel
	}
	logger = logger.With(zap.String("model", model))
	logger.Info("chat request", zap.Int("length", utf8.RuneCountInString(req.Message)))

	switch {
	case strings.TrimSpace(req.Message) == "":
		s.writeError(w, r, http.StatusBadRequest, chatapi.CodeInvalidRequest, "message must not be empty")
		return
	case utf8.RuneCountInString(req.Message) > MaxMessageLength:
		s.writeError(w, r, http.StatusBadRequest, chatapi.CodeInvalidRequest,
			fmt.Sprintf("message must not exceed %d characters", MaxMessageLength))
		return
	case !s.modelAvailable(model):
		s.writeError(w, r, http.StatusBadRequest, chatapi.CodeModelNotAvailable,
			fmt.Sprintf("model '%s' is not available, supported models: %s", model, strings.Join(s.opts.Models, ", ")))
		return
	}

	reply, err := s.completeWithRetry(r.Context(), logger, model, req.Message)
	if err != nil {
		logger.Error("chat request failed", zap.Error(err))
		s.writeError(w, r, http.StatusServiceUnavailable, chatapi.CodeAPIConnection,
			describeUpstreamError(err, s.opts.MaxRetries))
		return
	}

	if strings.TrimSpace(reply) == "" {
		logger.Warn("upstream returned empty content")
		s.writeJSON(w, http.StatusOK, chatapi.ChatResponse{
			Success:   false,
			Error:     "the model returned an empty response",
			Model:     model,
			Timestamp: s.timestamp(),
		})
		return
	}

	logger.Info("chat request completed", zap.Int("reply_length", utf8.RuneCountInString(reply)))
	s.writeJSON(w, http.StatusOK, chatapi.ChatResponse{
		Success:   true,
		Response:  reply,
		Model:     model,
		Timestamp: s.timestamp(),
	})
}

func (s *Server) completeWithRetry(ctx context.Context, logger *zap.Logger, model, message string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		start := time.Now()
		reply, err := s.completer.Complete(ctx, model, message)
		if err == nil {
			logger.Debug("upstream call succeeded",
				zap.Int("attempt", attempt),
				zap.Duration("elapsed", time.Since(start)))
			return reply, nil
		}

		lastErr = err
		logger.Warn("upstream call failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.opts.MaxRetries),
			zap.Error(err))

		if attempt == s.opts.MaxRetries {
			break
		}
		if err := sleep(ctx, s.opts.Backoff(attempt)); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Server) modelAvailable(model string) bool {
	return model != "" && slices.Contains(s.opts.Models, model)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models := s.opts.Models
	if models == nil {
		models = []string{}
	}
	s.writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleModelAvailable(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.modelAvailable(r.PathValue("model")))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(HealthText))
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeJSON(w, status, chatapi.ErrorResponse{
		Success:   false,
		Error:     message,
		ErrorCode: code,
		Timestamp: s.timestamp(),
		Path:      r.URL.Path,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) timestamp() string {
	return s.opts.Now().Format(timestampLayout)
}
