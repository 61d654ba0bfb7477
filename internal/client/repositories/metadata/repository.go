// Package metadata is a small key/value store for client bookkeeping such
// as the time of the last successful push.
package metadata

import "context"

// Well-known keys.
const (
	KeyLastPushAt = "last_push_at"
	KeyLastPullAt = "last_pull_at"
)

type Repository interface {
	// Get reports ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}
