// Package server exposes editing sessions over HTTP.
//
// Every request names a session; the server keeps the sessions it has
// touched in memory, serializes requests per session with a mutex and
// writes each committed change through to the configured session store. A
// drag in progress only exists in that in-memory copy.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder/edit"
	"github.com/matzehuels/ladderkit/pkg/pipeline"
	"github.com/matzehuels/ladderkit/pkg/session"
)

const (
	// maxBodySize caps request bodies (1MB).
	maxBodySize = 1 << 20
	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// SessionTTL is the idle lifetime of a session. Zero means
	// session.DefaultTTL.
	SessionTTL time.Duration

	// Edit is applied to every editing operation.
	Edit edit.Options

	// Export is the base of every export request.
	Export pipeline.Options

	Logger *log.Logger
}

// Server is the HTTP front of the editing sessions.
type Server struct {
	store  session.Store
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger

	mu   sync.Mutex
	live map[string]*entry
}

// entry is a session loaded into memory, guarded by its own mutex.
type entry struct {
	mu   sync.Mutex
	sess *session.Session
}

// New creates a server on top of a session store and an export runner.
func New(store session.Store, runner *pipeline.Runner, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	return &Server{
		store:  store,
		runner: runner,
		opts:   opts,
		logger: opts.Logger,
		live:   make(map[string]*entry),
	}
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/placeholders", s.showPlaceholders)
			r.Delete("/placeholders", s.hidePlaceholders)
			r.Post("/select", s.selectPlaceholder)
			r.Post("/elements", s.addElement)
			r.Delete("/elements", s.removeElements)
			r.Post("/drag/start", s.dragStart)
			r.Post("/drag/move", s.dragMove)
			r.Post("/drag/drop", s.dragDrop)
			r.Post("/drag/cancel", s.dragCancel)
			r.Get("/export.{format}", s.export)
		})
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Sweep drops expired sessions from memory and from the store.
func (s *Server) Sweep(ctx context.Context) error {
	s.mu.Lock()
	for id, e := range s.live {
		if e.mu.TryLock() {
			if e.sess.IsExpired() {
				delete(s.live, id)
			}
			e.mu.Unlock()
		}
	}
	s.mu.Unlock()
	return s.store.Cleanup(ctx)
}

// Len returns the number of sessions held in memory.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// acquire returns the locked entry of session id, loading it from the
// store when it is not in memory. The caller unlocks it.
func (s *Server) acquire(ctx context.Context, id string) (*entry, error) {
	if err := perrors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	e, ok := s.live[id]
	if !ok {
		e = &entry{}
		s.live[id] = e
	}
	// Lock the entry before releasing the map so a concurrent loader waits.
	e.mu.Lock()
	s.mu.Unlock()

	if e.sess != nil && !e.sess.IsExpired() {
		return e, nil
	}
	sess, err := s.store.Get(ctx, id)
	if err == nil && sess == nil {
		err = perrors.New(perrors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	if err != nil {
		s.forget(id, e)
		e.mu.Unlock()
		return nil, err
	}
	sess.SetOptions(s.opts.Edit)
	e.sess = sess
	return e, nil
}

// forget removes e from memory if it is still the entry of id.
func (s *Server) forget(id string, e *entry) {
	s.mu.Lock()
	if s.live[id] == e {
		delete(s.live, id)
	}
	s.mu.Unlock()
}

// register adds a new session to memory and the store.
func (s *Server) register(ctx context.Context, sess *session.Session) error {
	sess.SetOptions(s.opts.Edit)
	if err := s.store.Set(ctx, sess); err != nil {
		return err
	}
	s.mu.Lock()
	s.live[sess.ID] = &entry{sess: sess}
	s.mu.Unlock()
	return nil
}
