// Package journal is the append-only, hash-chained event log the connection
// handlers emit into. Entries are never mutated or deleted; consumers read
// them in sequence order.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Entry is an immutable, hash-chained journal record.
type Entry struct {
	Sequence    uint64                 `json:"sequence"`
	EventType   string                 `json:"event_type"`
	ContentHash string                 `json:"content_hash"`
	PrevHash    string                 `json:"prev_hash"`
	Timestamp   time.Time              `json:"timestamp"`
	Who         string                 `json:"who,omitempty"`
	Payload     map[string]interface{} `json:"payload"`
}

// Journal is an append-only, hash-chained log.
type Journal struct {
	mu       sync.RWMutex
	entries  []Entry
	headHash string
	clock    func() time.Time
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{
		entries:  make([]Entry, 0),
		headHash: "genesis",
		clock:    time.Now,
	}
}

// WithClock overrides the clock for testing.
func (j *Journal) WithClock(clock func() time.Time) *Journal {
	j.clock = clock
	return j
}

// Append adds an entry and returns its sequence number.
func (j *Journal) Append(eventType, who string, payload map[string]interface{}) (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	seq := uint64(len(j.entries)) + 1
	contentHash, err := entryHash(seq, eventType, payload, j.headHash)
	if err != nil {
		return 0, err
	}

	j.entries = append(j.entries, Entry{
		Sequence:    seq,
		EventType:   eventType,
		ContentHash: contentHash,
		PrevHash:    j.headHash,
		Timestamp:   j.clock(),
		Who:         who,
		Payload:     payload,
	})
	j.headHash = contentHash

	return seq, nil
}

// Get retrieves an entry by sequence number.
func (j *Journal) Get(seq uint64) (*Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if seq == 0 || seq > uint64(len(j.entries)) {
		return nil, fmt.Errorf("entry %d not found", seq)
	}
	entry := j.entries[seq-1]
	return &entry, nil
}

// Entries returns a copy of every entry in sequence order.
func (j *Journal) Entries() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Head returns the current head hash.
func (j *Journal) Head() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.headHash
}

// Length returns the number of entries.
func (j *Journal) Length() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Verify checks the integrity of the whole chain.
func (j *Journal) Verify() (bool, string) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	prevHash := "genesis"
	for i, entry := range j.entries {
		if entry.PrevHash != prevHash {
			return false, fmt.Sprintf("chain broken at entry %d: expected prev %s, got %s", i+1, prevHash, entry.PrevHash)
		}
		computed, err := entryHash(entry.Sequence, entry.EventType, entry.Payload, entry.PrevHash)
		if err != nil {
			return false, fmt.Sprintf("failed to hash entry %d", i+1)
		}
		if computed != entry.ContentHash {
			return false, fmt.Sprintf("hash mismatch at entry %d", i+1)
		}
		prevHash = entry.ContentHash
	}

	return true, "chain verified"
}

func entryHash(seq uint64, eventType string, payload map[string]interface{}, prevHash string) (string, error) {
	hashInput := struct {
		Seq      uint64                 `json:"seq"`
		Type     string                 `json:"type"`
		Payload  map[string]interface{} `json:"payload"`
		PrevHash string                 `json:"prev"`
	}{seq, eventType, payload, prevHash}

	raw, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("failed to marshal entry: %w", err)
	}
	h := sha256.Sum256(raw)
	return "sha256:" + hex.EncodeToString(h[:]), nil
}
