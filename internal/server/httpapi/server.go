// Package httpapi exposes the note service over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/dmitrijs2005/notesync/internal/server/services"
	"github.com/gorilla/mux"
)

// NoteService is the part of services.NoteService the handlers use.
type NoteService interface {
	Sync(ctx context.Context, batch []models.Note) ([]models.Outcome, error)
	List(ctx context.Context) ([]*models.Note, error)
	Get(ctx context.Context, id string) (*models.Note, error)
}

type SnapshotService interface {
	Take(ctx context.Context) (*services.SnapshotResult, error)
}

type HTTPServer struct {
	address         string
	notes           NoteService
	snapshots       SnapshotService
	logger          logging.Logger
	jwtSecret       []byte
	shutdownTimeout time.Duration
	now             func() time.Time
}

// NewHTTPServer builds the server. An empty secretKey leaves the note
// routes open.
func NewHTTPServer(a string, l logging.Logger, ns NoteService, ss SnapshotService, secretKey string, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         a,
		notes:           ns,
		snapshots:       ss,
		logger:          l.With("module", "http_server"),
		jwtSecret:       []byte(secretKey),
		shutdownTimeout: shutdownTimeout,
		now:             time.Now,
	}
}

// Handler returns the full middleware chain around the router.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.accessLog)

	r.Methods(http.MethodGet).Path("/").HandlerFunc(s.status)

	n := r.PathPrefix("/notes").Subrouter()
	if len(s.jwtSecret) > 0 {
		n.Use(s.requireToken)
	}
	n.Methods(http.MethodPost).Path("/sync").HandlerFunc(s.syncNotes)
	n.Methods(http.MethodPost).Path("/snapshot").HandlerFunc(s.takeSnapshot)
	n.Methods(http.MethodGet).Path("").HandlerFunc(s.listNotes)
	n.Methods(http.MethodGet).Path("/{id}").HandlerFunc(s.getNote)

	return cors(r)
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "err", err)
			_ = srv.Close()
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
