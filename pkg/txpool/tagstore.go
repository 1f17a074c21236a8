package txpool

import (
	"context"
	"sync"

	"github.com/cyborg-network/edge-connect/pkg/chain"
)

// TagStore records live provides-tags. Admit returns true if the tag was not
// live and is now recorded until now+longevity; false if a live entry already
// exists.
type TagStore interface {
	Admit(ctx context.Context, tag []byte, now chain.Height, longevity uint32) (bool, error)
}

// MemoryTagStore is the single-process tag store.
type MemoryTagStore struct {
	mu   sync.Mutex
	live map[string]chain.Height // tag -> height at which it expires
}

// NewMemoryTagStore creates an empty in-memory tag store.
func NewMemoryTagStore() *MemoryTagStore {
	return &MemoryTagStore{
		live: make(map[string]chain.Height),
	}
}

// Admit records the tag unless a non-expired entry exists. Expired entries
// are pruned lazily on touch.
func (s *MemoryTagStore) Admit(_ context.Context, tag []byte, now chain.Height, longevity uint32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := string(tag)
	if expiry, ok := s.live[key]; ok {
		if now < expiry {
			return false, nil
		}
		delete(s.live, key)
	}
	s.live[key] = now + chain.Height(longevity)
	return true, nil
}

// Len returns the number of recorded tags, expired ones included.
func (s *MemoryTagStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}
