package ignite

import (
	"errors"
	"testing"

	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
	"github.com/nilotpaldb/ignite/pkg/logger"
	"github.com/nilotpaldb/ignite/pkg/options"
)

func openTestInstance(t *testing.T, optFns ...options.OptionFunc) *Instance {
	t.Helper()
	dir := t.TempDir()
	opts := append([]options.OptionFunc{
		options.WithDirPath(dir),
		options.WithDataFileSize(options.MinDataFileSize),
	}, optFns...)

	inst, err := OpenWithLogger(logger.NewNop(), opts...)
	if err != nil {
		t.Fatalf("OpenWithLogger: %v", err)
	}
	t.Cleanup(func() { _ = inst.Close() })
	return inst
}

func TestInstancePutGetDelete(t *testing.T) {
	inst := openTestInstance(t)

	if err := inst.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := inst.Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("got %q, want v", got)
	}

	if err := inst.Delete([]byte("k")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := inst.Get([]byte("k")); !errors.Is(err, ierrors.ErrKeyNotFound) {
		t.Fatalf("expected KeyNotFound, got %v", err)
	}
}

func TestInstanceWriteBatchEndToEnd(t *testing.T) {
	inst := openTestInstance(t)

	wb, err := inst.NewWriteBatch(options.DefaultBatchOptions)
	if err != nil {
		t.Fatalf("NewWriteBatch: %v", err)
	}
	if err := wb.Put([]byte("k1"), []byte("v10")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := wb.Put([]byte("k2"), []byte("v20")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := inst.Get([]byte("k1")); !errors.Is(err, ierrors.ErrKeyNotFound) {
		t.Fatalf("staged write should not be visible before commit, got %v", err)
	}
	if err := wb.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if got, err := inst.Get([]byte("k1")); err != nil || string(got) != "v10" {
		t.Fatalf("Get(k1) after commit = (%q, %v)", got, err)
	}
	if got, err := inst.Get([]byte("k2")); err != nil || string(got) != "v20" {
		t.Fatalf("Get(k2) after commit = (%q, %v)", got, err)
	}
	if len(inst.ListKeys()) != 2 {
		t.Fatalf("got %d keys, want 2", len(inst.ListKeys()))
	}
}

func TestInstanceMergeThenReopen(t *testing.T) {
	dir := t.TempDir()
	opts := []options.OptionFunc{
		options.WithDirPath(dir),
		options.WithDataFileSize(options.MinDataFileSize),
		options.WithFileMergeThreshold(0),
	}

	inst, err := OpenWithLogger(logger.NewNop(), opts...)
	if err != nil {
		t.Fatalf("OpenWithLogger: %v", err)
	}

	value := make([]byte, 4096)
	for i := 0; i < 200; i++ {
		if err := inst.Put([]byte("hot"), value); err != nil {
			t.Fatalf("Put #%d: %v", i, err)
		}
	}

	if err := inst.Merge(); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if err := inst.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenWithLogger(logger.NewNop(), opts...)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get([]byte("hot"))
	if err != nil {
		t.Fatalf("Get after merge+reopen: %v", err)
	}
	if len(got) != len(value) {
		t.Fatalf("got value length %d, want %d", len(got), len(value))
	}
}

func TestInstanceStatAndBackup(t *testing.T) {
	inst := openTestInstance(t)

	for _, k := range []string{"a", "b", "c"} {
		if err := inst.Put([]byte(k), []byte("v")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	stat, err := inst.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if stat.KeyNum != 3 {
		t.Fatalf("got %d keys, want 3", stat.KeyNum)
	}

	backupDir := t.TempDir()
	if err := inst.Backup(backupDir); err != nil {
		t.Fatalf("Backup: %v", err)
	}
}
