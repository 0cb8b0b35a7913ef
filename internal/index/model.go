package index

import (
	"bytes"
	"sort"

	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/pkg/options"
)

// entry is one (key, position) pair; shared by every variant's iterator.
type entry struct {
	key []byte
	pos *codec.LogRecordPos
}

// sliceIterator is a snapshot iterator over a pre-sorted slice of entries,
// honoring a prefix filter and optional reverse order. All three Indexer
// variants build one of these at Iterator() time — the contract permits
// either materializing a snapshot or streaming, and a slice snapshot is
// what the persistent B+ tree variant needs anyway to decouple iteration
// from its underlying read transaction, so the in-memory variants share it.
type sliceIterator struct {
	entries []entry
	opts    options.IteratorOptions
	idx     int
}

// newSliceIterator sorts entries in place (ascending, or descending when
// opts.Reverse) and returns an iterator rewound to its first matching entry.
func newSliceIterator(entries []entry, opts options.IteratorOptions) *sliceIterator {
	sort.Slice(entries, func(i, j int) bool {
		cmp := bytes.Compare(entries[i].key, entries[j].key)
		if opts.Reverse {
			return cmp > 0
		}
		return cmp < 0
	})

	it := &sliceIterator{entries: entries, opts: opts}
	it.Rewind()
	return it
}

func (it *sliceIterator) matchesPrefix(key []byte) bool {
	return len(it.opts.Prefix) == 0 || bytes.HasPrefix(key, it.opts.Prefix)
}

func (it *sliceIterator) skipToValid() {
	for it.idx < len(it.entries) && !it.matchesPrefix(it.entries[it.idx].key) {
		it.idx++
	}
}

// Rewind resets the iterator to its first matching entry.
func (it *sliceIterator) Rewind() {
	it.idx = 0
	it.skipToValid()
}

// Seek positions at the first entry with key >= target, or the first entry
// with key <= target when the iterator was built in reverse mode.
func (it *sliceIterator) Seek(key []byte) {
	it.idx = sort.Search(len(it.entries), func(i int) bool {
		cmp := bytes.Compare(it.entries[i].key, key)
		if it.opts.Reverse {
			return cmp <= 0
		}
		return cmp >= 0
	})
	it.skipToValid()
}

// Next advances to the next matching entry.
func (it *sliceIterator) Next() {
	it.idx++
	it.skipToValid()
}

// Valid reports whether the iterator currently points at an entry.
func (it *sliceIterator) Valid() bool {
	return it.idx < len(it.entries)
}

// Key returns the current entry's key.
func (it *sliceIterator) Key() []byte {
	return it.entries[it.idx].key
}

// Value returns the current entry's position.
func (it *sliceIterator) Value() *codec.LogRecordPos {
	return it.entries[it.idx].pos
}

// Close is a no-op: sliceIterator holds no external resources.
func (it *sliceIterator) Close() error {
	return nil
}
