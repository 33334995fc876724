package core

import (
	"sync"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

// Registry enforces nickname uniqueness. All operations key on the folded
// form, and claiming is compare-and-set: of two racing claims for the same
// folded key, exactly one succeeds and the other observes ErrNicknameInUse.
//
// A nickname is claimed as soon as a session asks for it, even before
// registration completes, and is bound to an Identity once registration
// finishes. Only bound entries are visible through Lookup.
type Registry struct {
	mu      sync.Mutex
	entries map[proto.CanonicalKey]*registryEntry
}

type registryEntry struct {
	sessionID string
	identity  *Identity // nil until the session registers
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[proto.CanonicalKey]*registryEntry)}
}

// Claim reserves nick for the given session. A session may re-claim a key it
// already holds (display-case change).
func (r *Registry) Claim(nick string, sessionID string) (proto.CanonicalKey, error) {
	key := proto.Fold(nick)
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[key]; ok {
		if e.sessionID == sessionID {
			return key, nil
		}
		return "", ErrNicknameInUse
	}
	r.entries[key] = &registryEntry{sessionID: sessionID}
	return key, nil
}

// Rename moves the session's claim from oldKey to the folded form of newNick.
// Atomic with respect to concurrent claims of the target key. Renaming to
// the key already held returns ErrSameName; the caller decides whether a
// display-case change is still worth announcing.
func (r *Registry) Rename(oldKey proto.CanonicalKey, newNick, sessionID string) (proto.CanonicalKey, error) {
	newKey := proto.Fold(newNick)
	r.mu.Lock()
	defer r.mu.Unlock()

	if newKey == oldKey {
		return newKey, ErrSameName
	}
	if _, ok := r.entries[newKey]; ok {
		return "", ErrNicknameInUse
	}
	e, ok := r.entries[oldKey]
	if !ok || e.sessionID != sessionID {
		// The old claim vanished; treat as a fresh claim.
		e = &registryEntry{sessionID: sessionID}
	}
	delete(r.entries, oldKey)
	r.entries[newKey] = e
	return newKey, nil
}

// Bind attaches the identity to its claimed key. Registration calls this
// exactly once per session.
func (r *Registry) Bind(key proto.CanonicalKey, id *Identity) {
	r.mu.Lock()
	if e, ok := r.entries[key]; ok {
		e.identity = id
	}
	r.mu.Unlock()
}

// Lookup resolves a name to a registered identity.
func (r *Registry) Lookup(name string) *Identity {
	key := proto.Fold(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		return e.identity
	}
	return nil
}

// Release frees the key if it is still held by the given session.
func (r *Registry) Release(key proto.CanonicalKey, sessionID string) {
	r.mu.Lock()
	if e, ok := r.entries[key]; ok && e.sessionID == sessionID {
		delete(r.entries, key)
	}
	r.mu.Unlock()
}

// All snapshots the registered identities.
func (r *Registry) All() []*Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Identity, 0, len(r.entries))
	for _, e := range r.entries {
		if e.identity != nil {
			out = append(out, e.identity)
		}
	}
	return out
}

// Count returns the number of registered identities.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.identity != nil {
			n++
		}
	}
	return n
}
