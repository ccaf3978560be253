package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nao1215/iprecon/internal/model"
)

const (
	// ProcessPath is the batch endpoint.
	ProcessPath = "/api/process-ips"

	// DefaultShutdownTimeout bounds the graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	readHeaderTimeout = 10 * time.Second
	maxRequestBody    = 10 << 20
)

// Processor runs one batch request. *service.Service implements it.
type Processor interface {
	Process(ctx context.Context, req model.Request) model.Response
}

// Server is the HTTP front end of the batch service.
type Server struct {
	processor       Processor
	addr            string
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithShutdownTimeout sets how long in-flight requests may take after
// shutdown starts.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// New creates a Server that listens on addr.
func New(processor Processor, addr string, opts ...Option) (*Server, error) {
	if addr == "" {
		return nil, ErrInvalidListenAddress
	}

	s := &Server{
		processor:       processor,
		addr:            addr,
		shutdownTimeout: DefaultShutdownTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+ProcessPath, s.handleProcess)
	mux.HandleFunc("OPTIONS "+ProcessPath, handlePreflight)
	return withCORS(mux)
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled, then shuts
// down gracefully. Requests in flight keep running until they finish or
// the shutdown timeout expires.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", listener.Addr().String())
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleProcess decodes a Request, runs the batch and encodes the Response.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req model.Request
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.logger.Warn("malformed request body", "error", err)
		writeError(w, http.StatusBadRequest, "malformed JSON request body")
		return
	}

	resp := s.processor.Process(r.Context(), req)
	s.logger.Info("batch processed",
		"total_ips", resp.TotalIPs,
		"success_rate", resp.Metrics.SuccessRate,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

// handlePreflight answers CORS preflight requests.
func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// withCORS allows any origin, method and header.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		next.ServeHTTP(w, r)
	})
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck // best effort
}
