// Package store implements the minimal content-addressed token store the
// chain builder consults for proofs that are not embedded inline (spec §4.5).
package store

import (
	"fmt"
	"sync"

	"github.com/yeying-community/ucan/internal/codec"
)

// ErrNotFound is returned by Store.RequireToken when no token is indexed
// under the given CID.
type ErrNotFound struct {
	CID string
}

func (e *ErrNotFound) Error() string { return fmt.Sprintf("ucan: no token stored for cid %q", e.CID) }

// Store is the CID-keyed token lookup contract spec §4.5 requires of the
// chain builder's environment.
type Store interface {
	RequireToken(cid string) (string, error)
	WriteToken(jwt string) (string, error)
}

// Memory is an in-memory, map-backed Store. It is the only Store
// implementation this core ships; persistence, replication, and garbage
// collection are left to callers (spec §4.5, "on-disk layout: unspecified").
type Memory struct {
	mu     sync.RWMutex
	hasher codec.Hasher
	tokens map[string]string
}

var _ Store = (*Memory)(nil)

// NewMemory constructs an empty Memory store using the default (Blake3-256)
// hasher for CID derivation.
func NewMemory() *Memory {
	return &Memory{tokens: make(map[string]string)}
}

// NewMemoryWithHasher is like NewMemory but pins a specific multihash code,
// for tests that need deterministic cross-checks against a known CID.
func NewMemoryWithHasher(h codec.Hasher) *Memory {
	return &Memory{hasher: h, tokens: make(map[string]string)}
}

// RequireToken returns the JWT string stored under cid, or an *ErrNotFound.
func (m *Memory) RequireToken(cid string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jwt, ok := m.tokens[cid]
	if !ok {
		return "", &ErrNotFound{CID: cid}
	}
	return jwt, nil
}

// WriteToken computes jwt's CID, indexes it, and returns the CID. Writing
// the same bytes twice is idempotent and returns the same CID both times;
// a session that only ever reads back what it wrote sees its own writes
// immediately (spec §4.5 implies no eventual-consistency window for a
// single in-memory store).
func (m *Memory) WriteToken(jwt string) (string, error) {
	cid, err := codec.DeriveCID(jwt, m.hasher)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[cid] = jwt
	return cid, nil
}
