// Package index implements the Indexer contract and its three
// interchangeable variants — an in-memory sorted B-tree, an in-memory skip
// list, and a persistent on-disk B+ tree — plus the ordered iterator shared
// across all three.
package index

import (
	"go.uber.org/zap"

	"github.com/nilotpaldb/ignite/internal/codec"
	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
	"github.com/nilotpaldb/ignite/pkg/options"
)

// Indexer is the in-memory (or persistent) mapping from key bytes to the
// on-disk position of that key's most recent record. Every variant must be
// safe for concurrent use by many readers and writers.
type Indexer interface {
	// Put inserts or overwrites key's position, returning the position it
	// replaced (nil if key was absent).
	Put(key []byte, pos *codec.LogRecordPos) *codec.LogRecordPos

	// Get returns key's current position, or nil if key is absent.
	Get(key []byte) *codec.LogRecordPos

	// Delete removes key, returning its prior position and whether it was present.
	Delete(key []byte) (*codec.LogRecordPos, bool)

	// Size returns the number of keys currently indexed.
	Size() int

	// ListKeys returns every indexed key, in ascending lexicographic order.
	ListKeys() [][]byte

	// Iterator returns a snapshot iterator honoring opts.Prefix and opts.Reverse.
	Iterator(opts options.IteratorOptions) IndexIterator

	// PersistsIndex reports whether this variant survives an engine restart
	// without replaying the data-file log (true only for the B+ tree variant).
	PersistsIndex() bool

	// Close releases any resources the variant holds (file handles, etc).
	Close() error
}

// IndexIterator walks a snapshot of the index in key order.
type IndexIterator interface {
	// Rewind resets the iterator to its first entry.
	Rewind()
	// Seek positions the iterator at the first entry with key >= target
	// (or <= target when the iterator was built in reverse mode).
	Seek(key []byte)
	// Next advances to the following entry.
	Next()
	// Valid reports whether the iterator currently points at an entry.
	Valid() bool
	// Key returns the current entry's key. Only valid when Valid() is true.
	Key() []byte
	// Value returns the current entry's position. Only valid when Valid() is true.
	Value() *codec.LogRecordPos
	// Close releases iterator resources (e.g. a held bbolt read transaction).
	Close() error
}

// Config is shared construction context for every index variant.
type Config struct {
	// DirPath is the engine directory; only the persistent B+ tree variant uses it.
	DirPath string
	Logger  *zap.SugaredLogger
}

// New constructs the Indexer variant selected by typ.
func New(typ options.IndexType, cfg Config) (Indexer, error) {
	if cfg.Logger == nil {
		return nil, ierrors.NewValidationError(nil, ierrors.ErrorCodeInvalidInput, "index logger is required").
			WithField("Logger").WithRule("required")
	}

	switch typ {
	case options.IndexTypeBTree:
		return NewBTreeIndex(), nil
	case options.IndexTypeSkipList:
		return NewSkipListIndex(), nil
	case options.IndexTypeBPTree:
		return NewBPTreeIndex(cfg.DirPath, cfg.Logger)
	default:
		return NewBTreeIndex(), nil
	}
}
