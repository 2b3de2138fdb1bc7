package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tipsy/backend/internal/storage"
)

// TestMemorySnapshotsRoundTrip verifies save/load/delete semantics and
// the missing-key signal.
func TestMemorySnapshotsRoundTrip(t *testing.T) {
	s := storage.NewMemorySnapshots()

	// Missing key: no error, just absent.
	_, ok, err := s.Load(storage.KeyUsers)
	assert.NoError(t, err)
	assert.False(t, ok)

	// Round trip.
	assert.NoError(t, s.Save(storage.KeyUsers, []byte(`[{"id":"u1"}]`)))
	blob, ok, err := s.Load(storage.KeyUsers)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"u1"}]`, string(blob))

	// Delete makes it absent again.
	assert.NoError(t, s.Delete(storage.KeyUsers))
	_, ok, _ = s.Load(storage.KeyUsers)
	assert.False(t, ok)
}

// TestMemorySnapshotsCopiesBlobs verifies callers cannot mutate stored
// state through returned or saved slices.
func TestMemorySnapshotsCopiesBlobs(t *testing.T) {
	s := storage.NewMemorySnapshots()

	original := []byte("snapshot")
	assert.NoError(t, s.Save("k", original))
	original[0] = 'X'

	blob, _, _ := s.Load("k")
	assert.Equal(t, "snapshot", string(blob), "saved blob must be isolated from the caller's slice")

	blob[0] = 'Y'
	again, _, _ := s.Load("k")
	assert.Equal(t, "snapshot", string(again), "loaded blob must be a copy")
}
