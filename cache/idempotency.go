package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInFlight is returned by Reserve when another request holds the key and
// has not finished yet.
var ErrInFlight = errors.New("request with this idempotency key is in progress")

// Response is a finished response remembered for replay.
type Response struct {
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body"`
}

// IdempotencyStore remembers the outcome of a request by key.
//
// A caller first Reserves the key. If a stored Response comes back it is
// replayed. Otherwise the caller runs the request and either Completes the
// key with its response or Releases it so a retry can run again.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (*Response, error)
	Complete(ctx context.Context, key string, resp Response, ttl time.Duration) error
	Release(ctx context.Context, key string) error
	Close() error
}
