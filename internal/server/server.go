// Package server exposes the resolution engine over HTTP.
//
// The transport layer owns the two obligations the engine places on its
// caller: a wall-clock timeout around each resolution (bounding any
// in-flight LLM call) and a panic boundary that turns unexpected failures
// into a generic apology response instead of a crash.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/iTherapyLLC/innervoice/internal/board"
	"github.com/iTherapyLLC/innervoice/internal/command"
	"github.com/iTherapyLLC/innervoice/internal/health"
	"github.com/iTherapyLLC/innervoice/internal/observe"
	"github.com/iTherapyLLC/innervoice/internal/resolve"
)

const (
	defaultRequestTimeout = 15 * time.Second
	maxBodyBytes          = 1 << 20

	apology = "I'm sorry, something went wrong on my end. Please try again."
)

// ResolveRequest is the JSON body of POST /v1/resolve.
type ResolveRequest struct {
	Utterance string                   `json:"utterance"`
	Buttons   []board.Button           `json:"buttons"`
	Grid      board.GridInfo           `json:"grid"`
	History   []board.ConversationTurn `json:"history,omitempty"`
}

// ResolveResponse is the JSON reply: the resolved command (null when
// nothing resolved) plus the response text, which is never empty.
type ResolveResponse struct {
	Command *command.Command `json:"command"`
	Text    string           `json:"text"`
}

// Config holds server settings.
type Config struct {
	// ListenAddr is the TCP address to listen on.
	ListenAddr string

	// RequestTimeout bounds one resolution request. Zero means 15s.
	RequestTimeout time.Duration
}

// Server serves the resolution API plus health and metrics endpoints.
type Server struct {
	engine  *resolve.Engine
	health  *health.Handler
	metrics *observe.Metrics
	cfg     Config
}

// New creates a Server around engine.
func New(engine *resolve.Engine, h *health.Handler, m *observe.Metrics, cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	return &Server{engine: engine, health: h, metrics: m, cfg: cfg}
}

// Handler returns the fully-wired HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/resolve", s.handleResolve)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.health.Register(mux)

	return observe.Middleware(s.metrics)(s.recoverer(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening", "addr", s.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// handleResolve decodes one resolution request, runs the engine under the
// configured timeout, and writes the command plus response text.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ResolveResponse{
			Text: "I couldn't read that request.",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	result := s.engine.Resolve(ctx, resolve.Request{
		Utterance: req.Utterance,
		Snapshot: board.Snapshot{
			Buttons: req.Buttons,
			Grid:    req.Grid,
			History: req.History,
		},
	})

	writeJSON(w, http.StatusOK, ResolveResponse{
		Command: result.Command,
		Text:    result.Text,
	})
}

// recoverer converts a panic anywhere below into the generic apology with a
// 500 status. The pipeline must never leave a request without a textual
// response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observe.Logger(r.Context()).Error("panic while handling request",
					"panic", rec,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeJSON(w, http.StatusInternalServerError, ResolveResponse{Text: apology})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
