// Package server exposes the use-case list and the computed dashboard over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dtkav/casemap/aggregate"
	"github.com/dtkav/casemap/logging"
	"github.com/dtkav/casemap/usecase"
)

// Lister is the read side of the list store.
type Lister interface {
	Items(ctx context.Context) ([]aggregate.Record, error)
	Item(ctx context.Context, id int64) (aggregate.Record, error)
	Attachments(ctx context.Context, id int64) ([]usecase.Attachment, error)
	Download(ctx context.Context, serverRelativeURL string) ([]byte, error)
}

// ErrNotFound marks a missing item. Listers should wrap it (or their own
// sentinel registered through WithNotFound).
var ErrNotFound = errors.New("not found")

// Server serves the HTTP API.
type Server struct {
	list     Lister
	chart    aggregate.Options
	limiter  *rate.Limiter
	timeout  time.Duration
	notFound []error
}

// Option configures a Server.
type Option func(*Server)

// WithChartOptions sets the dashboard defaults.
func WithChartOptions(opts aggregate.Options) Option {
	return func(s *Server) { s.chart = opts }
}

// WithRateLimit bounds the sustained request rate. perSecond <= 0 disables it.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTimeout bounds how long one request may take.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithNotFound adds sentinel errors that mean "no such item".
func WithNotFound(errs ...error) Option {
	return func(s *Server) { s.notFound = append(s.notFound, errs...) }
}

// New builds a server over list.
func New(list Lister, opts ...Option) *Server {
	s := &Server{
		list:     list,
		chart:    aggregate.DefaultOptions(),
		timeout:  30 * time.Second,
		notFound: []error{ErrNotFound},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed API with its middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/get-usecase-data", s.handleData)
	mux.HandleFunc("GET /api/get-usecase-image", s.handleImage)
	mux.HandleFunc("GET /api/export-usecase-cover-image", s.handleCover)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/library", s.handleLibrary)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var h http.Handler = mux
	h = s.withTimeout(h)
	h = s.withRateLimit(h)
	h = withRequestLog(h)
	return h
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	logger := logging.WithPrefix("server")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StandardLog(),
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	}
}

func (s *Server) isNotFound(err error) bool {
	for _, target := range s.notFound {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("write response", "err", err)
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

// internalError logs err with the request id and hides it from the client.
func internalError(w http.ResponseWriter, r *http.Request, where string, err error) {
	logging.Error("Error in "+where, "request_id", RequestID(r.Context()), "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}
