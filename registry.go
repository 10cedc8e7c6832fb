package tracechain

import "sync"

// slotKey is the opaque per-isolate token gating the validity of that
// isolate's captures. Keys compare by identity only and cannot be
// created outside this package. The struct is one byte, not zero, so
// that distinct allocations never share an address.
type slotKey struct{ _ byte }

// keyRegistry maps live isolates to their keys. It is the only shared
// mutable state in the package; everything else rides on the error
// values themselves.
type keyRegistry struct {
	mu   sync.Mutex
	keys map[Isolate]*slotKey
}

var registry = keyRegistry{keys: make(map[Isolate]*slotKey)}

// hostKey marks captures taken from host code. The host outlives every
// isolate, so the key is never invalidated.
var hostKey = &slotKey{}

// keyFor returns the key for iso, allocating one on first use. A nil
// iso is host code.
func keyFor(iso Isolate) *slotKey {
	if iso == nil {
		return hostKey
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	k, ok := registry.keys[iso]
	if !ok {
		k = &slotKey{}
		registry.keys[iso] = k
	}
	return k
}

// keyLive reports whether key is still the registered key for iso.
// Stale keys never match again: destruction removes the entry, and any
// later registration allocates a fresh key.
func keyLive(iso Isolate, key *slotKey) bool {
	if key == hostKey {
		return iso == nil
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return registry.keys[iso] == key
}

// IsolateDestroyed tells the package that iso is gone. Every capture
// taken inside iso renders as the empty string from this point on.
// Safe to call more than once, or for an isolate that never captured
// anything. Capturing through the handle afterwards is a contract
// violation; the registry would treat it as a brand-new isolate.
func IsolateDestroyed(iso Isolate) {
	if iso == nil {
		return
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.keys, iso)
}
