package index

import (
	"bytes"
	"sync"

	"github.com/google/btree"

	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/pkg/options"
)

// btreeDegree controls node fanout; 32 is the degree google/btree's own
// benchmarks settle on for general-purpose workloads.
const btreeDegree = 32

// btreeItem adapts an entry to google/btree's ordering contract.
type btreeItem struct {
	key []byte
	pos *codec.LogRecordPos
}

func (a *btreeItem) Less(than btree.Item) bool {
	return bytes.Compare(a.key, than.(*btreeItem).key) < 0
}

// BTreeIndex is the in-memory sorted B-tree Indexer variant. It never
// persists across restarts: the engine always replays the data-file log to
// rebuild it at open.
type BTreeIndex struct {
	tree *btree.BTree
	mu   sync.RWMutex
}

// NewBTreeIndex constructs an empty BTreeIndex.
func NewBTreeIndex() *BTreeIndex {
	return &BTreeIndex{tree: btree.New(btreeDegree)}
}

func (b *BTreeIndex) Put(key []byte, pos *codec.LogRecordPos) *codec.LogRecordPos {
	item := &btreeItem{key: key, pos: pos}

	b.mu.Lock()
	defer b.mu.Unlock()

	old := b.tree.ReplaceOrInsert(item)
	if old == nil {
		return nil
	}
	return old.(*btreeItem).pos
}

func (b *BTreeIndex) Get(key []byte) *codec.LogRecordPos {
	b.mu.RLock()
	defer b.mu.RUnlock()

	item := b.tree.Get(&btreeItem{key: key})
	if item == nil {
		return nil
	}
	return item.(*btreeItem).pos
}

func (b *BTreeIndex) Delete(key []byte) (*codec.LogRecordPos, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	old := b.tree.Delete(&btreeItem{key: key})
	if old == nil {
		return nil, false
	}
	return old.(*btreeItem).pos, true
}

func (b *BTreeIndex) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Len()
}

func (b *BTreeIndex) ListKeys() [][]byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([][]byte, 0, b.tree.Len())
	b.tree.Ascend(func(i btree.Item) bool {
		keys = append(keys, i.(*btreeItem).key)
		return true
	})
	return keys
}

func (b *BTreeIndex) Iterator(opts options.IteratorOptions) IndexIterator {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]entry, 0, b.tree.Len())
	b.tree.Ascend(func(i btree.Item) bool {
		it := i.(*btreeItem)
		entries = append(entries, entry{key: it.key, pos: it.pos})
		return true
	})
	return newSliceIterator(entries, opts)
}

func (b *BTreeIndex) PersistsIndex() bool { return false }

func (b *BTreeIndex) Close() error { return nil }
