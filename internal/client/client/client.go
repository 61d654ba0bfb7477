package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notesync/internal/api"
	"github.com/dmitrijs2005/notesync/internal/client/config"
	"github.com/dmitrijs2005/notesync/internal/server/models"
)

// Client is the CLI's view of the notes server.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	// Sync pushes notes and returns one result per note, in order.
	Sync(ctx context.Context, notes []models.Note) ([]api.Result, error)
	List(ctx context.Context) ([]*models.Note, error)
	Snapshot(ctx context.Context) (*api.SnapshotResponse, error)
}

// New builds the client selected by cfg.Transport.
func New(cfg *config.Config) (Client, error) {
	switch cfg.Transport {
	case config.TransportHTTP, "":
		return NewHTTPClient(cfg.ServerEndpointAddr, cfg.AccessToken, cfg.RequestTimeout), nil
	case config.TransportGRPC:
		return NewGRPCClient(cfg.GRPCEndpointAddr, cfg.AccessToken, cfg.RequestTimeout)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
