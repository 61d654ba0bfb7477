// Package client contains the client-side building blocks of notesync.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) to talk to
//     the notes server: Ping, Sync, List and Snapshot.
//  2. An HTTP implementation (see HTTPClient) speaking the JSON API.
//  3. A gRPC implementation (see GRPCClient) that injects the access token
//     through an interceptor and maps status codes to sentinel errors.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// Transport failures are exposed as sentinel errors that callers match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrRejected, and
// common.ErrSnapshotsDisabled.
//
// See Also
//
//   - Interface:  Client
//   - Transports: HTTPClient, GRPCClient, New
//   - DB helpers: InitDatabase, RunMigrations
package client
