package index

import (
	"testing"

	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/pkg/logger"
	"github.com/nilotpaldb/ignite/pkg/options"
)

func newVariants(t *testing.T) map[string]Indexer {
	t.Helper()

	bpt, err := NewBPTreeIndex(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("NewBPTreeIndex: %v", err)
	}
	t.Cleanup(func() { bpt.Close() })

	return map[string]Indexer{
		"btree":    NewBTreeIndex(),
		"skiplist": NewSkipListIndex(),
		"bptree":   bpt,
	}
}

func TestIndexerPutGetDelete(t *testing.T) {
	for name, idx := range newVariants(t) {
		t.Run(name, func(t *testing.T) {
			pos1 := &codec.LogRecordPos{FileID: 1, Offset: 0, Size: 10}
			if old := idx.Put([]byte("a"), pos1); old != nil {
				t.Fatalf("expected nil previous position, got %+v", old)
			}

			pos2 := &codec.LogRecordPos{FileID: 2, Offset: 20, Size: 5}
			old := idx.Put([]byte("a"), pos2)
			if old == nil || *old != *pos1 {
				t.Fatalf("expected previous position %+v, got %+v", pos1, old)
			}

			got := idx.Get([]byte("a"))
			if got == nil || *got != *pos2 {
				t.Fatalf("expected %+v, got %+v", pos2, got)
			}

			if idx.Get([]byte("missing")) != nil {
				t.Fatal("expected nil for missing key")
			}

			prior, existed := idx.Delete([]byte("a"))
			if !existed || prior == nil || *prior != *pos2 {
				t.Fatalf("unexpected delete result: existed=%v prior=%+v", existed, prior)
			}

			if _, existed := idx.Delete([]byte("a")); existed {
				t.Fatal("expected second delete to report not-existed")
			}

			if idx.Size() != 0 {
				t.Fatalf("expected empty index, got size %d", idx.Size())
			}
		})
	}
}

func TestIndexerIteratorPrefixAndReverse(t *testing.T) {
	for name, idx := range newVariants(t) {
		t.Run(name, func(t *testing.T) {
			keys := []string{"aa", "ab", "ba", "bb", "ca"}
			for i, k := range keys {
				idx.Put([]byte(k), &codec.LogRecordPos{FileID: 0, Offset: int64(i), Size: 1})
			}

			it := idx.Iterator(options.IteratorOptions{Prefix: []byte("a")})
			var got []string
			for it.Rewind(); it.Valid(); it.Next() {
				got = append(got, string(it.Key()))
			}
			it.Close()

			want := []string{"aa", "ab"}
			if len(got) != len(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("got %v, want %v", got, want)
				}
			}

			rev := idx.Iterator(options.IteratorOptions{Reverse: true})
			rev.Seek([]byte("bb"))
			if !rev.Valid() || string(rev.Key()) != "bb" {
				t.Fatalf("expected reverse seek to land on bb, got %q valid=%v", rev.Key(), rev.Valid())
			}
			rev.Close()
		})
	}
}

func TestIndexerListKeysOrdered(t *testing.T) {
	idx := NewBTreeIndex()
	idx.Put([]byte("b"), &codec.LogRecordPos{})
	idx.Put([]byte("a"), &codec.LogRecordPos{})
	idx.Put([]byte("c"), &codec.LogRecordPos{})

	keys := idx.ListKeys()
	if len(keys) != 3 || string(keys[0]) != "a" || string(keys[1]) != "b" || string(keys[2]) != "c" {
		t.Fatalf("expected sorted keys, got %v", keys)
	}
}

func TestPersistsIndexCapabilityFlag(t *testing.T) {
	if (NewBTreeIndex()).PersistsIndex() {
		t.Fatal("btree must not persist across restarts")
	}
	if (NewSkipListIndex()).PersistsIndex() {
		t.Fatal("skiplist must not persist across restarts")
	}
	bpt, err := NewBPTreeIndex(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("NewBPTreeIndex: %v", err)
	}
	defer bpt.Close()
	if !bpt.PersistsIndex() {
		t.Fatal("bptree must report that it persists across restarts")
	}
}
