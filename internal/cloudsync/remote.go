// Package cloudsync mirrors a user's store to a remote snapshot.
// Conflicts are settled per session as last-write-wins.
package cloudsync

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Snapshot is every synced key of one user.
type Snapshot struct {
	User      string
	Values    map[string]json.RawMessage
	UpdatedAt time.Time
}

type Remote interface {
	// Fetch returns nil, nil when the user has no remote snapshot.
	Fetch(ctx context.Context, user string) (*Snapshot, error)
	Push(ctx context.Context, snap Snapshot) error
}

// MemoryRemote keeps snapshots in process.
type MemoryRemote struct {
	mu     sync.Mutex
	snaps  map[string]Snapshot
	pushes int
	// Err, when set, fails every call.
	Err error
}

func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{snaps: map[string]Snapshot{}}
}

func (m *MemoryRemote) Fetch(_ context.Context, user string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.snaps[user]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryRemote) Push(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.snaps[snap.User] = snap
	m.pushes++
	return nil
}

// Pushes reports how many pushes succeeded.
func (m *MemoryRemote) Pushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pushes
}
