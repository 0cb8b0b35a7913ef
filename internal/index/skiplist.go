package index

import (
	"sync"

	"github.com/huandu/skiplist"

	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/pkg/options"
)

// SkipListIndex is the in-memory skip-list Indexer variant. huandu/skiplist
// itself is not safe for concurrent mutation, so a RWMutex guards every
// operation; readers still see a consistent view because every write holds
// the mutex for the duration of the structural change.
type SkipListIndex struct {
	list *skiplist.SkipList
	mu   sync.RWMutex
}

// NewSkipListIndex constructs an empty SkipListIndex ordered by raw byte
// comparison of keys.
func NewSkipListIndex() *SkipListIndex {
	return &SkipListIndex{list: skiplist.New(skiplist.Bytes)}
}

func (s *SkipListIndex) Put(key []byte, pos *codec.LogRecordPos) *codec.LogRecordPos {
	s.mu.Lock()
	defer s.mu.Unlock()

	var old *codec.LogRecordPos
	if elem := s.list.Get(key); elem != nil {
		old = elem.Value.(*codec.LogRecordPos)
	}
	s.list.Set(key, pos)
	return old
}

func (s *SkipListIndex) Get(key []byte) *codec.LogRecordPos {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elem := s.list.Get(key)
	if elem == nil {
		return nil
	}
	return elem.Value.(*codec.LogRecordPos)
}

func (s *SkipListIndex) Delete(key []byte) (*codec.LogRecordPos, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem := s.list.Remove(key)
	if elem == nil {
		return nil, false
	}
	return elem.Value.(*codec.LogRecordPos), true
}

func (s *SkipListIndex) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.Len()
}

func (s *SkipListIndex) ListKeys() [][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([][]byte, 0, s.list.Len())
	for elem := s.list.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Key().([]byte))
	}
	return keys
}

func (s *SkipListIndex) Iterator(opts options.IteratorOptions) IndexIterator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]entry, 0, s.list.Len())
	for elem := s.list.Front(); elem != nil; elem = elem.Next() {
		entries = append(entries, entry{key: elem.Key().([]byte), pos: elem.Value.(*codec.LogRecordPos)})
	}
	return newSliceIterator(entries, opts)
}

func (s *SkipListIndex) PersistsIndex() bool { return false }

func (s *SkipListIndex) Close() error { return nil }
