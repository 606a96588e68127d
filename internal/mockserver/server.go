// Package mockserver is an in-memory stand-in for the GestAgent HTTP API.
// It serves every endpoint the smoke suites call, with the same response
// shapes, so suites can be exercised without a running service.
package mockserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Options tune the simulated service
type Options struct {
	// Latency is added to every request before it is handled
	Latency time.Duration
	// NoExtraction makes uploads finish without AI extraction data
	NoExtraction bool
	// Now replaces time.Now for generated identifiers and timestamps
	Now func() time.Time
	// Seed lists document ids that exist, completed, from the start
	Seed []string
}

// Server is the mock GestAgent service
type Server struct {
	log        logrus.FieldLogger
	opts       Options
	store      *store
	httpServer *http.Server
	listener   net.Listener
	wg         sync.WaitGroup
}

// New creates a mock server. Nothing listens until Start is called.
func New(log logrus.FieldLogger, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		log:   log.WithField("component", "mock-server"),
		opts:  opts,
		store: newStore(),
	}

	for _, id := range opts.Seed {
		s.store.add(&document{
			JobID:         id,
			Status:        statusCompleted,
			DocumentType:  "factura",
			Source:        "seed",
			CreatedAt:     opts.Now(),
			ProcessedJSON: invoiceExtraction(),
		})
	}

	return s
}

// Handler returns the router. Tests mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)
	if s.opts.Latency > 0 {
		r.Use(s.latency)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/mcp", func(r chi.Router) {
			r.Get("/execute", s.handleCapabilities)
			r.Post("/execute", s.handleExecute)
			r.Post("/portal", s.handlePortal)
			r.Post("/document", s.handleProcessDocument)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", s.handleUpload)
			r.Get("/list", s.handleList)
			r.Get("/export/sage", s.handleExportAll)
			r.Get("/{id}", s.handleGetDocument)
		})

		r.Post("/exports/sage", s.handleExport)
		r.Get("/dashboard/stats", s.handleStats)
	})

	return r
}

// Start binds addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.log.WithField("listen", ln.Addr().String()).Info("Mock GestAgent listening")

		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("HTTP server error")
		}
	}()

	return nil
}

// URL returns the base URL of a started server
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}

// Stop shuts the server down and waits for the serve loop to exit.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	err := s.httpServer.Shutdown(ctx)
	s.wg.Wait()

	if err != nil {
		return fmt.Errorf("shutting down mock server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		s.log.WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("duration", time.Since(start)).
			Debug("Request handled")
	})
}

func (s *Server) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			return
		}
		next.ServeHTTP(w, r)
	})
}
