package grpc

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/notesync/internal/api"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.reply(ctx, api.NewStatusResponse(time.Now()))
}

func (s *GRPCServer) Sync(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	b, err := rpc.StructJSON(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	syncReq, err := api.DecodeSyncRequest(bytes.NewReader(b))
	if err != nil {
		s.logger.Warn(ctx, "rejected sync request", "err", err)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	outcomes, err := s.notes.Sync(ctx, syncReq.Notes)
	if err != nil {
		s.logger.Error(ctx, "sync failed", "err", err)
		return nil, status.Error(codes.Internal, "Failed to sync notes")
	}

	return s.reply(ctx, api.NewSyncResponse(outcomes))
}

func (s *GRPCServer) List(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	all, err := s.notes.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list failed", "err", err)
		return nil, status.Error(codes.Internal, "Failed to list notes")
	}

	return s.reply(ctx, api.ListResponse{Notes: all})
}

func (s *GRPCServer) Snapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.snapshots.Take(ctx)
	if errors.Is(err, common.ErrSnapshotsDisabled) {
		return nil, status.Error(codes.Unimplemented, err.Error())
	}
	if err != nil {
		s.logger.Error(ctx, "snapshot failed", "err", err)
		return nil, status.Error(codes.Internal, "Failed to take snapshot")
	}

	return s.reply(ctx, api.SnapshotResponse{Key: res.Key, URL: res.URL})
}

func (s *GRPCServer) reply(ctx context.Context, v any) (*structpb.Struct, error) {
	out, err := rpc.ToStruct(v)
	if err != nil {
		s.logger.Error(ctx, "failed to encode response", "err", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}
