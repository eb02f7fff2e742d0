// Package callback implements the compiler callback protocol of
// SPEC_FULL.md §4.C: a process-wide registry mapping small integer ids to
// live Callback objects, and an analysis-store-backed implementation of
// that protocol that the registry dispenses ids for.
package callback

import (
	"sync"
	"sync/atomic"
)

// Callback receives the exact call sequence a compiler plugin issues for
// each compilation unit: BeginSource, then any interleaving of SourceDep/
// JarDep/ClassDep and FoundSubclass/GeneratedClass, then EndSource.
type Callback interface {
	BeginSource(source string)
	SourceDep(source, dependsOn string)
	JarDep(source, jarFile string)
	ClassDep(source, classFile string)
	FoundSubclass(source, name, superName string, isModule bool)
	GeneratedClass(source, classFile string)
	EndSource(source string)
}

// Registry is the process-wide id -> Callback table the compiler plugin's
// command line id argument indexes into. Grounded on the shape of
// internal/cache.Cache[V] (a mutex-guarded map plus a monotonic counter),
// generalized here to assign rather than compute-on-miss ids.
type Registry struct {
	mu      sync.RWMutex
	entries map[int64]Callback
	nextID  atomic.Int64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[int64]Callback{}}
}

// Register assigns a fresh id to cb and returns it.
func (r *Registry) Register(cb Callback) int64 {
	id := r.nextID.Add(1)

	r.mu.Lock()
	r.entries[id] = cb
	r.mu.Unlock()

	return id
}

// Lookup returns the callback registered under id, or ok=false if none is
// registered (including after Unregister).
func (r *Registry) Lookup(id int64) (Callback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cb, ok := r.entries[id]

	return cb, ok
}

// Unregister removes id from the table.
func (r *Registry) Unregister(id int64) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}
