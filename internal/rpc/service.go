// Package rpc describes the notesync.NoteSync gRPC service. Requests and
// responses are google.protobuf.Struct values holding the same JSON
// documents as the HTTP API (see package api), so no generated code is
// needed on either side.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "notesync.NoteSync"

// Full method names, as seen by interceptors.
const (
	MethodSync     = "/" + ServiceName + "/Sync"
	MethodList     = "/" + ServiceName + "/List"
	MethodSnapshot = "/" + ServiceName + "/Snapshot"
	MethodPing     = "/" + ServiceName + "/Ping"
)

// NoteSyncServer is implemented by the server side of the service.
type NoteSyncServer interface {
	Sync(context.Context, *structpb.Struct) (*structpb.Struct, error)
	List(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Snapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterNoteSyncServer(s grpc.ServiceRegistrar, srv NoteSyncServer) {
	s.RegisterService(&NoteSyncServiceDesc, srv)
}

func unaryHandler(fullMethod string, call func(NoteSyncServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(NoteSyncServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(NoteSyncServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var NoteSyncServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NoteSyncServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Sync", Handler: unaryHandler(MethodSync, NoteSyncServer.Sync)},
		{MethodName: "List", Handler: unaryHandler(MethodList, NoteSyncServer.List)},
		{MethodName: "Snapshot", Handler: unaryHandler(MethodSnapshot, NoteSyncServer.Snapshot)},
		{MethodName: "Ping", Handler: unaryHandler(MethodPing, NoteSyncServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "notesync.proto",
}

// NoteSyncClient is the client stub.
type NoteSyncClient struct {
	cc grpc.ClientConnInterface
}

func NewNoteSyncClient(cc grpc.ClientConnInterface) *NoteSyncClient {
	return &NoteSyncClient{cc: cc}
}

func (c *NoteSyncClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *NoteSyncClient) Sync(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSync, in, opts...)
}

func (c *NoteSyncClient) List(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodList, in, opts...)
}

func (c *NoteSyncClient) Snapshot(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSnapshot, in, opts...)
}

func (c *NoteSyncClient) Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodPing, in, opts...)
}
