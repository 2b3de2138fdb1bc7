// Package storage provides the injected persistence used by the auth
// store — an opaque key-value snapshot interface with in-memory, Redis
// and Postgres implementations — plus the Redis pub/sub transport the
// chat hub fans messages out over. The core never persists reports or
// ledger blocks: those are in-memory for the lifetime of the process.
package storage

import "sync"

// Well-known snapshot keys.
const (
	KeyUsers       = "tipsy:users"
	KeyCurrentUser = "tipsy:current_user"
)

// Snapshots is the key-value persistence contract: serialized blobs,
// written after every mutation and read once at startup.
type Snapshots interface {
	// Load returns the stored blob and whether the key existed.
	Load(key string) ([]byte, bool, error)
	Save(key string, value []byte) error
	Delete(key string) error
}

// MemorySnapshots keeps blobs in process memory. It is the default
// when no backend is configured and the implementation tests run
// against.
type MemorySnapshots struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemorySnapshots returns an empty in-memory store.
func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{blobs: make(map[string][]byte)}
}

func (m *MemorySnapshots) Load(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

func (m *MemorySnapshots) Save(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob := make([]byte, len(value))
	copy(blob, value)
	m.blobs[key] = blob
	return nil
}

func (m *MemorySnapshots) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)
	return nil
}
