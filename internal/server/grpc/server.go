// Package grpc exposes the note service as notesync.NoteSync.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/dmitrijs2005/notesync/internal/rpc"
	"github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/dmitrijs2005/notesync/internal/server/services"
	"google.golang.org/grpc"
)

type NoteService interface {
	Sync(ctx context.Context, batch []models.Note) ([]models.Outcome, error)
	List(ctx context.Context) ([]*models.Note, error)
}

type SnapshotService interface {
	Take(ctx context.Context) (*services.SnapshotResult, error)
}

type GRPCServer struct {
	address   string
	notes     NoteService
	snapshots SnapshotService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, ns NoteService, ss SnapshotService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		notes:     ns,
		snapshots: ss,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterNoteSyncServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
