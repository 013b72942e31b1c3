// Package server runs the interpreter behind an HTTP API.
//
// Routes:
//
//	GET  /health    liveness probe
//	GET  /settings  current configuration, API key redacted
//	POST /chat      {"message": "..."} -> {"reply": "..."}
//	GET  /metrics   Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openinterpreter/oi/pkg/interpreter"
	"github.com/openinterpreter/oi/pkg/llm"
)

const (
	EnvHost = "INTERPRETER_HOST"
	EnvPort = "INTERPRETER_PORT"

	DefaultHost = "127.0.0.1"
	DefaultPort = "8000"

	// ShutdownTimeout bounds graceful shutdown after the context is done.
	ShutdownTimeout = 10 * time.Second

	// maxRequestBody caps POST /chat bodies.
	maxRequestBody = 1 << 20
)

// CompleterFactory builds a completer for the final model settings.
type CompleterFactory func(settings interpreter.LLM) llm.Completer

// Server serves one interpreter session over HTTP. Chat turns are
// serialized and share the interpreter's message history.
type Server struct {
	Addr         string
	NewCompleter CompleterFactory
	Logger       *slog.Logger

	mu       sync.Mutex
	registry *prometheus.Registry
	metrics  *metrics
}

// New creates a Server listening on the address from the environment.
func New(newCompleter CompleterFactory) *Server {
	return &Server{
		Addr:         AddrFromEnv(),
		NewCompleter: newCompleter,
	}
}

// AddrFromEnv returns INTERPRETER_HOST:INTERPRETER_PORT with defaults.
func AddrFromEnv() string {
	host := os.Getenv(EnvHost)
	if host == "" {
		host = DefaultHost
	}
	port := os.Getenv(EnvPort)
	if port == "" {
		port = DefaultPort
	}
	return net.JoinHostPort(host, port)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Handler builds the router for it.
func (s *Server) Handler(it *interpreter.Interpreter) http.Handler {
	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = newMetrics(s.registry)

	var completer llm.Completer
	if it.LLM != nil && s.NewCompleter != nil {
		completer = s.NewCompleter(*it.LLM)
	}

	r := chi.NewRouter()
	r.Use(s.metrics.middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/settings", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		settings := it.Redacted()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, settings)
	})
	r.Post("/chat", func(w http.ResponseWriter, r *http.Request) {
		s.handleChat(w, r, it, completer)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, it *interpreter.Interpreter, completer llm.Completer) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}
	if completer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no language model configured"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	messages := append(it.Messages, interpreter.Message{Role: "user", Content: req.Message})
	reply, err := completer.Complete(r.Context(), it.FullSystemMessage(), messages)
	if err != nil {
		s.logger().Error("Completion failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	it.Messages = append(messages, interpreter.Message{Role: "assistant", Content: reply})
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// Run implements cli.Mode. It serves until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, it *interpreter.Interpreter) error {
	addr := s.Addr
	if addr == "" {
		addr = AddrFromEnv()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(it),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("Server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger().Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return ctx.Err()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
