package ledger_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"tipsy/backend/internal/ledger"
	"tipsy/backend/internal/models"
)

// TestNewLedgerHasGenesis verifies that a fresh chain holds exactly the
// genesis block with the fixed sentinel fields.
func TestNewLedgerHasGenesis(t *testing.T) {
	// Act
	l := ledger.New()
	blocks := l.Blocks()

	// Assert
	assert.Len(t, blocks, 1, "fresh chain should contain only the genesis block")
	genesis := blocks[0]
	assert.Equal(t, 0, genesis.Index)
	assert.Equal(t, models.GenesisPrevHash, genesis.PreviousHash)
	assert.JSONEq(t, `"Genesis Block"`, genesis.Payload)
	assert.Equal(t, genesis.ComputeHash(), genesis.Hash, "genesis digest must be recomputable")
}

// TestAppendLinksBlocks verifies the chain invariant: after n appends
// the length is n+1 and every block points at its parent's hash.
func TestAppendLinksBlocks(t *testing.T) {
	// Arrange
	l := ledger.New()

	// Act
	for i := 0; i < 10; i++ {
		l.Append(map[string]any{"event": "test", "n": i})
	}
	blocks := l.Blocks()

	// Assert
	assert.Len(t, blocks, 11)
	for i := 1; i < len(blocks); i++ {
		assert.Equal(t, i, blocks[i].Index)
		assert.Equal(t, blocks[i-1].Hash, blocks[i].PreviousHash,
			"block %d must reference its parent's hash", i)
	}
}

// TestDigestsRecomputable verifies that every stored block's hash is a
// pure function of its stored fields.
func TestDigestsRecomputable(t *testing.T) {
	l := ledger.New()
	l.Append("first")
	l.Append(map[string]string{"event": "second"})

	for _, b := range l.Blocks() {
		recomputed := models.BlockHash(b.Index, b.PreviousHash, b.Timestamp, b.Payload)
		assert.Equal(t, b.Hash, recomputed, "block %d digest must be reproducible", b.Index)
	}
}

// TestAppendReturnsSerializedPayload verifies that payloads are stored
// as canonical JSON and survive a round trip.
func TestAppendReturnsSerializedPayload(t *testing.T) {
	l := ledger.New()

	block := l.Append(map[string]string{"event": "status.changed", "reportId": "r1"})

	var decoded map[string]string
	err := json.Unmarshal([]byte(block.Payload), &decoded)
	assert.NoError(t, err)
	assert.Equal(t, "status.changed", decoded["event"])
	assert.Equal(t, "r1", decoded["reportId"])
}

// TestBlocksSnapshotIsolation verifies snapshot semantics: appends
// after a read do not mutate the previously returned slice.
func TestBlocksSnapshotIsolation(t *testing.T) {
	l := ledger.New()
	before := l.Blocks()

	l.Append("later")

	assert.Len(t, before, 1, "earlier snapshot must not grow")
	assert.Equal(t, 2, l.Length())
}

// TestVerifyDetectsTampering verifies that editing any stored field is
// caught by the verification walk.
func TestVerifyDetectsTampering(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(chain []models.Block)
	}{
		{
			name:   "payload edited",
			mutate: func(chain []models.Block) { chain[1].Payload = `"forged"` },
		},
		{
			name:   "hash replaced",
			mutate: func(chain []models.Block) { chain[2].Hash = "deadbeef" },
		},
		{
			name:   "link rewired",
			mutate: func(chain []models.Block) { chain[2].PreviousHash = chain[0].Hash },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange: a small intact chain, then a local tampered copy.
			l := ledger.New()
			l.Append("a")
			l.Append("b")
			assert.NoError(t, l.Verify(), "untouched chain must verify")

			chain := l.Blocks()
			tt.mutate(chain)

			// Assert on the copy via a manual walk identical to Verify.
			broken := false
			for i, b := range chain {
				if b.ComputeHash() != b.Hash {
					broken = true
					break
				}
				if i > 0 && b.PreviousHash != chain[i-1].Hash {
					broken = true
					break
				}
			}
			assert.True(t, broken, "tampering must be detectable from stored fields")
		})
	}
}

// BenchmarkAppend measures the cost of hashing and linking one block.
func BenchmarkAppend(b *testing.B) {
	l := ledger.New()
	payload := map[string]string{"event": "vote.cast", "reportId": "r7"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Append(payload)
	}
}
