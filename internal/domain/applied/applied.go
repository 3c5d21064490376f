// Package applied tracks one-time administrative operations so they cannot
// run twice against the same target.
package applied

import (
	"context"
	"sync"
	"sync/atomic"
)

// Registry records applied operation keys.
type Registry interface {
	// SeenAndRecord atomically checks whether key was already applied and
	// records it if not. Returns true if the key was already present.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key, allowing the operation to be retried. Use only
	// when an operation was recorded but its write failed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds the registry key for an operation against a target.
func Key(operation, targetID string) string {
	return operation + ":" + targetID
}

// inMemoryRegistry implements Registry with a mutex-guarded set. The
// registry stays small (one key per squad and operation), so no eviction is
// needed.
type inMemoryRegistry struct {
	mu   sync.Mutex
	seen map[string]struct{}
	size atomic.Int64
}

// NewInMemoryRegistry creates an empty registry.
func NewInMemoryRegistry() Registry {
	return &inMemoryRegistry{seen: make(map[string]struct{})}
}

func (r *inMemoryRegistry) SeenAndRecord(_ context.Context, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seen[key]; exists {
		return true
	}
	r.seen[key] = struct{}{}
	r.size.Add(1)
	return false
}

func (r *inMemoryRegistry) Unrecord(_ context.Context, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seen[key]; exists {
		delete(r.seen, key)
		r.size.Add(-1)
	}
}

func (r *inMemoryRegistry) Size() int64 {
	return r.size.Load()
}
