package cache

import (
	"context"
	"time"
)

// Cache is the JSON value cache used by the read path of the record store
// server and by the redis-backed local snapshot store.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Well-known keys. The job and draft collections are cached whole, matching
// the whole-collection read/replace contract of the record store.
const (
	KeyJobCollection   = "records:jobs"
	KeyDraftCollection = "records:drafts"
)
