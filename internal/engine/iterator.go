package engine

import (
	"github.com/nilotpaldb/ignite/internal/index"
	"github.com/nilotpaldb/ignite/pkg/options"
)

// Iterator walks a snapshot of the index in key order, resolving each
// entry's value lazily against the engine rather than eagerly copying every
// value at construction time (§9 "avoiding reference cycles": the iterator
// borrows the engine for its lifetime, never owns it).
type Iterator struct {
	indexIt index.IndexIterator
	engine  *Engine
}

// NewIterator builds an Iterator honoring opts.Prefix and opts.Reverse.
func (e *Engine) NewIterator(opts options.IteratorOptions) *Iterator {
	e.mu.RLock()
	it := e.index.Iterator(opts)
	e.mu.RUnlock()
	return &Iterator{indexIt: it, engine: e}
}

// Rewind resets the iterator to its first entry.
func (it *Iterator) Rewind() { it.indexIt.Rewind() }

// Seek positions the iterator at the first entry with key >= target (or <=
// target when the iterator was built in reverse mode).
func (it *Iterator) Seek(key []byte) { it.indexIt.Seek(key) }

// Next advances to the next matching entry.
func (it *Iterator) Next() { it.indexIt.Next() }

// Valid reports whether the iterator currently points at an entry.
func (it *Iterator) Valid() bool { return it.indexIt.Valid() }

// Key returns the current entry's key.
func (it *Iterator) Key() []byte { return it.indexIt.Key() }

// Value reads and returns the current entry's value from disk.
func (it *Iterator) Value() ([]byte, error) {
	it.engine.mu.RLock()
	defer it.engine.mu.RUnlock()
	return it.engine.readValueAt(it.indexIt.Value())
}

// Close releases the underlying index iterator's resources.
func (it *Iterator) Close() error { return it.indexIt.Close() }
