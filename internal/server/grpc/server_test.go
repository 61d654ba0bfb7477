package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/notesync/internal/api"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/dmitrijs2005/notesync/internal/rpc"
	"github.com/dmitrijs2005/notesync/internal/server/auth"
	"github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeNotes{}, &fakeSnapshots{}, "secret")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, &fakeNotes{}, &fakeSnapshots{}, "")

	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func TestEndToEnd_OverBufconn(t *testing.T) {
	ns := &fakeNotes{outcomes: []models.Outcome{models.Updated{Note: models.Note{ID: "a", Version: 2}}}}
	srv := newTestServer(ns, &fakeSnapshots{}, "secret")

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	client := rpc.NewNoteSyncClient(conn)

	_, err = client.Ping(context.Background(), nil)
	require.NoError(t, err, "ping is open")

	req, err := rpc.ToStruct(api.SyncRequest{Notes: []models.Note{{ID: "a", Version: 1}}})
	require.NoError(t, err)

	_, err = client.Sync(context.Background(), req)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	tok, err := auth.GenerateToken("laptop", []byte("secret"), time.Hour)
	require.NoError(t, err)
	authed := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tok)

	resp, err := client.Sync(authed, req)
	require.NoError(t, err)

	var got api.SyncResponse
	require.NoError(t, rpc.FromStruct(resp, &got))
	require.Len(t, got.Results, 1)
	assert.True(t, got.Results[0].Accepted())
	assert.Equal(t, int64(2), got.Results[0].Note.Version)
}
