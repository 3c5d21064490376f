// Package identity defines the directory collaborator that resolves display
// names for participants. Names decorate standings only; they are never used
// in scoring.
package identity

import (
	"context"
	"sync"
)

// Directory resolves a display name per user id.
type Directory interface {
	// DisplayName returns the display name for a user id, or an empty string
	// when the user is unknown.
	DisplayName(ctx context.Context, userID string) (string, error)
}

// StaticDirectory is an in-memory Directory backed by a fixed map. Useful
// for tests, seeding and deployments where the identity provider exports a
// name list out of band.
type StaticDirectory struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewStaticDirectory creates a directory from an initial name map.
func NewStaticDirectory(names map[string]string) *StaticDirectory {
	d := &StaticDirectory{names: make(map[string]string, len(names))}
	for id, name := range names {
		d.names[id] = name
	}
	return d
}

// DisplayName returns the mapped name, or empty when unknown.
func (d *StaticDirectory) DisplayName(_ context.Context, userID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.names[userID], nil
}

// SetDisplayName adds or replaces a user's display name.
func (d *StaticDirectory) SetDisplayName(userID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[userID] = name
}
