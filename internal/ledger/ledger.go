// Package ledger maintains the tamper-evident audit trail: an
// append-only sequence of hash-linked blocks, one per state-changing
// event. It is an audit structure, not a distributed chain — there is
// no consensus, no forks and no persistence across restarts; every
// process run starts from a fresh genesis block.
package ledger

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"tipsy/backend/internal/models"
)

// isoLayout matches the ISO-8601 millisecond format the block
// timestamps are stored in.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

const genesisPayload = "Genesis Block"

// Ledger owns the chain. All access goes through its methods; the
// backing slice is never aliased out.
type Ledger struct {
	mu     sync.Mutex
	blocks []models.Block
}

// New creates a chain holding only the genesis block: index 0,
// previous hash "0", fixed payload.
func New() *Ledger {
	l := &Ledger{}
	genesis := newBlock(0, genesisPayload, models.GenesisPrevHash)
	l.blocks = append(l.blocks, genesis)
	return l
}

func newBlock(index int, payload any, previousHash string) models.Block {
	timestamp := time.Now().UTC().Format(isoLayout)
	data, _ := json.Marshal(payload)
	serialized := string(data)
	return models.Block{
		Index:        index,
		Payload:      serialized,
		Hash:         models.BlockHash(index, previousHash, timestamp, serialized),
		PreviousHash: previousHash,
		Timestamp:    timestamp,
	}
}

// Append serializes payload, links it to the current tip and appends
// the resulting block. It cannot fail for any JSON-able payload; the
// returned block is a copy.
func (l *Ledger) Append(payload any) models.Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	tip := l.blocks[len(l.blocks)-1]
	block := newBlock(len(l.blocks), payload, tip.Hash)
	l.blocks = append(l.blocks, block)
	return block
}

// Blocks returns a point-in-time copy of the whole chain. Later
// appends do not show up in the returned slice.
func (l *Ledger) Blocks() []models.Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Block, len(l.blocks))
	copy(out, l.blocks)
	return out
}

// Length returns the current chain length, genesis included.
func (l *Ledger) Length() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.blocks)
}

// Verify walks the chain and recomputes every digest and parent link.
// It returns nil for an intact chain and a descriptive error naming
// the first broken block otherwise. Nothing calls this automatically;
// it exists for operators and tests.
func (l *Ledger) Verify() error {
	blocks := l.Blocks()

	for i, b := range blocks {
		if b.Index != i {
			return fmt.Errorf("block %d: stored index %d out of sequence", i, b.Index)
		}
		if b.ComputeHash() != b.Hash {
			return fmt.Errorf("block %d: digest mismatch", i)
		}
		if i == 0 {
			if b.PreviousHash != models.GenesisPrevHash {
				return fmt.Errorf("genesis block: previous hash %q, want %q", b.PreviousHash, models.GenesisPrevHash)
			}
			continue
		}
		if b.PreviousHash != blocks[i-1].Hash {
			return fmt.Errorf("block %d: broken link to block %d", i, i-1)
		}
	}
	return nil
}
