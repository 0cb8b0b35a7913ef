package batch

import (
	"errors"
	"testing"

	"github.com/nilotpaldb/ignite/internal/engine"
	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
	"github.com/nilotpaldb/ignite/pkg/logger"
	"github.com/nilotpaldb/ignite/pkg/options"
)

func openTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DirPath = t.TempDir()
	opts.DataFileSize = options.MinDataFileSize

	e, err := engine.Open(engine.Config{Options: opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestWriteBatchNotVisibleBeforeCommit(t *testing.T) {
	e := openTestEngine(t)

	wb, err := New(e, options.DefaultBatchOptions)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := wb.Put([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := wb.Put([]byte("k2"), []byte("v2")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := e.Get([]byte("k1")); !errors.Is(err, ierrors.ErrKeyNotFound) {
		t.Fatalf("staged put should not be visible before commit, got %v", err)
	}

	seqBefore := e.CurrentSeqNo()
	if err := wb.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if e.CurrentSeqNo() != seqBefore+1 {
		t.Fatalf("sequence should advance by exactly 1 per commit, got %d -> %d", seqBefore, e.CurrentSeqNo())
	}

	for _, kv := range [][2]string{{"k1", "v1"}, {"k2", "v2"}} {
		got, err := e.Get([]byte(kv[0]))
		if err != nil {
			t.Fatalf("Get(%q): %v", kv[0], err)
		}
		if string(got) != kv[1] {
			t.Fatalf("Get(%q) = %q, want %q", kv[0], got, kv[1])
		}
	}
}

func TestWriteBatchDeleteAfterStagedPutRemovesIt(t *testing.T) {
	e := openTestEngine(t)

	wb, err := New(e, options.DefaultBatchOptions)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := wb.Put([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := wb.Delete([]byte("k1")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := wb.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, err := e.Get([]byte("k1")); !errors.Is(err, ierrors.ErrKeyNotFound) {
		t.Fatalf("key staged put-then-delete should not exist after commit, got %v", err)
	}
}

func TestWriteBatchDeleteAbsentKeyIsNoop(t *testing.T) {
	e := openTestEngine(t)

	wb, err := New(e, options.DefaultBatchOptions)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := wb.Delete([]byte("never-existed")); err != nil {
		t.Fatalf("Delete on absent key should be a no-op, got %v", err)
	}
	if err := wb.Commit(); err != nil {
		t.Fatalf("Commit of an effectively empty batch should succeed, got %v", err)
	}
}

func TestWriteBatchExceedsMaxBatchNum(t *testing.T) {
	e := openTestEngine(t)

	wb, err := New(e, options.BatchOptions{MaxBatchNum: 2, SyncWrites: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := wb.Put([]byte(k), []byte("v")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	if err := wb.Commit(); !errors.Is(err, ierrors.ErrExceedMaxBatchNum) {
		t.Fatalf("expected ExceedMaxBatchNum, got %v", err)
	}
}

func TestWriteBatchAcrossTwoCommitsAdvancesSequence(t *testing.T) {
	e := openTestEngine(t)

	wb1, err := New(e, options.DefaultBatchOptions)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := wb1.Put([]byte("k1"), []byte("v10")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := wb1.Put([]byte("k2"), []byte("v20")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := wb1.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if e.CurrentSeqNo() != 2 {
		t.Fatalf("sequence after first batch: got %d, want 2", e.CurrentSeqNo())
	}

	wb2, err := New(e, options.DefaultBatchOptions)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := wb2.Put([]byte("k3"), []byte("v30")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := wb2.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if e.CurrentSeqNo() != 3 {
		t.Fatalf("sequence after second batch: got %d, want 3", e.CurrentSeqNo())
	}

	if len(e.ListKeys()) != 3 {
		t.Fatalf("got %d keys, want 3", len(e.ListKeys()))
	}
}
