// Package kv is the persisted key-value layer under the menu data stores.
// Every backend keeps the same flat key layout: one key per instance dish
// collection, one per instance price, plus the registry and the active
// instance pointer.
package kv

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by a backend that cannot serve requests at all.
// The data stores treat it as "persistence disabled" and degrade to seeds.
var ErrUnavailable = errors.New("kv: storage unavailable")

// Store is a string key-value store.  Get reports found=false, err=nil for a
// missing key; err is reserved for backend failures.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
