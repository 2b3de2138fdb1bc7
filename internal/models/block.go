package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// GenesisPrevHash is the previous-hash sentinel carried by block 0.
const GenesisPrevHash = "0"

// Block is one entry of the hash-chained audit log. Every
// state-changing event in the store appends exactly one block whose
// digest covers the index, the parent hash, the timestamp and the
// serialized payload — so any later edit of a stored block is
// detectable by recomputing the digest.
type Block struct {
	Index        int    `json:"index"`
	Payload      string `json:"payload"` // stringified JSON of the logged event
	Hash         string `json:"hash"`
	PreviousHash string `json:"previousHash"`
	Timestamp    string `json:"timestamp"` // ISO-8601 UTC
}

// ComputeHash recomputes the digest from the block's stored fields.
// It must reproduce Hash for an untampered block; this is the chain's
// sole integrity check.
func (b *Block) ComputeHash() string {
	return BlockHash(b.Index, b.PreviousHash, b.Timestamp, b.Payload)
}

// BlockHash is the chain digest: sha256 over the concatenation of the
// index, the parent hash, the timestamp and the serialized payload.
// Deterministic for identical inputs, and a single changed character
// in the payload yields an unrelated digest.
func BlockHash(index int, previousHash, timestamp, payload string) string {
	sum := sha256.Sum256([]byte(strconv.Itoa(index) + previousHash + timestamp + payload))
	return hex.EncodeToString(sum[:])
}
