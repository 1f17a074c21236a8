// Package keyring holds the node's local ed25519 signing keys and implements
// the chain.Keystore interface consumed by the relay scheduler and submitter.
package keyring

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/cyborg-network/edge-connect/pkg/chain"
)

// Keyring stores local signing keys indexed by account (hex public key).
type Keyring struct {
	mu   sync.RWMutex
	keys map[chain.AccountID]ed25519.PrivateKey
}

// New creates an empty keyring.
func New() *Keyring {
	return &Keyring{
		keys: make(map[chain.AccountID]ed25519.PrivateKey),
	}
}

// Generate creates a fresh ed25519 keypair and adds it to the keyring.
func (k *Keyring) Generate() (chain.AccountID, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("key generation failed: %w", err)
	}
	id := chain.AccountID(hex.EncodeToString(pub))
	k.mu.Lock()
	k.keys[id] = priv
	k.mu.Unlock()
	return id, nil
}

// AddKey adds an existing private key and returns its account.
func (k *Keyring) AddKey(priv ed25519.PrivateKey) chain.AccountID {
	pub := priv.Public().(ed25519.PublicKey)
	id := chain.AccountID(hex.EncodeToString(pub))
	k.mu.Lock()
	k.keys[id] = priv
	k.mu.Unlock()
	return id
}

// RemoveKey drops a key from the keyring.
func (k *Keyring) RemoveKey(id chain.AccountID) {
	k.mu.Lock()
	delete(k.keys, id)
	k.mu.Unlock()
}

// LocalSigners returns the local accounts in lexicographic order, so every
// caller observes the same enumeration.
func (k *Keyring) LocalSigners() []chain.AccountID {
	k.mu.RLock()
	defer k.mu.RUnlock()
	ids := make([]chain.AccountID, 0, len(k.keys))
	for id := range k.keys {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Sign signs msg with the private key of the given account.
func (k *Keyring) Sign(id chain.AccountID, msg []byte) ([]byte, error) {
	k.mu.RLock()
	priv, ok := k.keys[id]
	k.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown key: %s", id)
	}
	return ed25519.Sign(priv, msg), nil
}

// Verify checks a signature against the account's public key.
func Verify(id chain.AccountID, msg, sig []byte) (bool, error) {
	pub, err := hex.DecodeString(string(id))
	if err != nil {
		return false, fmt.Errorf("invalid account id hex: %w", err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("invalid public key size")
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig), nil
}
