package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notesync/internal/api"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/rpc"
	"github.com/dmitrijs2005/notesync/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type noteSyncClient interface {
	Sync(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	List(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Snapshot(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      noteSyncClient
	accessToken string
	timeout     time.Duration
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL, accessToken string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, timeout: timeout}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewNoteSyncClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &structpb.Struct{})
	if err != nil {
		return s.mapError(err)
	}

	var st api.StatusResponse
	if err := rpc.FromStruct(resp, &st); err != nil {
		return err
	}
	if st.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Sync(ctx context.Context, notes []models.Note) ([]api.Result, error) {
	if notes == nil {
		notes = []models.Note{}
	}

	req, err := rpc.ToStruct(api.SyncRequest{Notes: notes})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	resp, err := s.client.Sync(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	var out api.SyncResponse
	if err := rpc.FromStruct(resp, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (s *GRPCClient) List(ctx context.Context) ([]*models.Note, error) {
	resp, err := s.client.List(ctx, &structpb.Struct{})
	if err != nil {
		return nil, s.mapError(err)
	}

	var out api.ListResponse
	if err := rpc.FromStruct(resp, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

func (s *GRPCClient) Snapshot(ctx context.Context) (*api.SnapshotResponse, error) {
	resp, err := s.client.Snapshot(ctx, &structpb.Struct{})
	if err != nil {
		return nil, s.mapError(err)
	}

	var out api.SnapshotResponse
	if err := rpc.FromStruct(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.Unimplemented:
		return common.ErrSnapshotsDisabled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
