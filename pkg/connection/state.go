// Package connection holds the singleton connection slot between the chain
// and the edge server, and the four dispatchable operations that manage it.
package connection

import (
	"errors"
	"sync"

	"github.com/cyborg-network/edge-connect/pkg/chain"
)

var (
	// ErrConnectionAlreadyExists rejects creating a second connection.
	ErrConnectionAlreadyExists = errors.New("connection already exists")
	// ErrConnectionDoesNotExist rejects operating on an absent connection.
	ErrConnectionDoesNotExist = errors.New("connection does not exist")
)

// Connection is the singleton slot value: at most one exists at any time.
type Connection struct {
	ID    uint32
	Owner chain.AccountID
}

// State owns the optional connection slot. Handler execution is serialized
// by the chain, but the relay scheduler reads this state concurrently, hence
// the lock.
type State struct {
	mu   sync.RWMutex
	slot *Connection
}

// NewState creates an empty slot.
func NewState() *State {
	return &State{}
}

// Exists reports whether the slot is occupied.
func (s *State) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slot != nil
}

// Get returns the current connection, if any.
func (s *State) Get() (Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.slot == nil {
		return Connection{}, false
	}
	return *s.slot, true
}

// Put occupies the slot. Fails with ErrConnectionAlreadyExists if occupied;
// the slot is unchanged on failure.
func (s *State) Put(c Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot != nil {
		return ErrConnectionAlreadyExists
	}
	s.slot = &c
	return nil
}

// Take clears the slot and returns the prior connection. Fails with
// ErrConnectionDoesNotExist if empty.
func (s *State) Take() (Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot == nil {
		return Connection{}, ErrConnectionDoesNotExist
	}
	prior := *s.slot
	s.slot = nil
	return prior, nil
}
