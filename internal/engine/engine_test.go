package engine

import (
	"errors"
	"testing"

	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
	"github.com/nilotpaldb/ignite/pkg/logger"
	"github.com/nilotpaldb/ignite/pkg/options"
)

func testOptions(dir string) options.Options {
	opts := options.NewDefaultOptions()
	opts.DirPath = dir
	opts.DataFileSize = options.MinDataFileSize
	return opts
}

func openTestEngine(t *testing.T, opts options.Options) *Engine {
	t.Helper()
	e, err := Open(Config{Options: opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEnginePutGetDelete(t *testing.T) {
	dir := t.TempDir()
	e := openTestEngine(t, testOptions(dir))

	if err := e.Put([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := e.Get([]byte("k1"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("got %q, want v1", got)
	}

	if err := e.Delete([]byte("k1")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := e.Get([]byte("k1")); !errors.Is(err, ierrors.ErrKeyNotFound) {
		t.Fatalf("expected KeyNotFound after delete, got %v", err)
	}

	// Delete on an absent key is a no-op success (§9 open question (c)).
	if err := e.Delete([]byte("never-existed")); err != nil {
		t.Fatalf("Delete on absent key should succeed, got %v", err)
	}
}

func TestEnginePutEmptyKeyRejected(t *testing.T) {
	dir := t.TempDir()
	e := openTestEngine(t, testOptions(dir))

	if err := e.Put(nil, []byte("v")); !errors.Is(err, ierrors.ErrKeyIsEmpty) {
		t.Fatalf("expected KeyIsEmpty, got %v", err)
	}
}

func TestEngineListKeysAndFold(t *testing.T) {
	dir := t.TempDir()
	e := openTestEngine(t, testOptions(dir))

	want := map[string]string{"a": "1", "b": "2", "c": "3"}
	for k, v := range want {
		if err := e.Put([]byte(k), []byte(v)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	keys := e.ListKeys()
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}

	seen := make(map[string]string)
	if err := e.Fold(func(key, value []byte) bool {
		seen[string(key)] = string(value)
		return true
	}); err != nil {
		t.Fatalf("Fold: %v", err)
	}
	for k, v := range want {
		if seen[k] != v {
			t.Fatalf("Fold missed %q: got %q, want %q", k, seen[k], v)
		}
	}
}

func TestEngineFoldEarlyExit(t *testing.T) {
	dir := t.TempDir()
	e := openTestEngine(t, testOptions(dir))

	for _, k := range []string{"a", "b", "c"} {
		if err := e.Put([]byte(k), []byte("v")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	visited := 0
	if err := e.Fold(func(key, value []byte) bool {
		visited++
		return false
	}); err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if visited != 1 {
		t.Fatalf("expected exactly 1 visit before early exit, got %d", visited)
	}
}

func TestEngineRotatesActiveFile(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)
	e := openTestEngine(t, opts)

	value := make([]byte, 4096)
	for i := 0; i < 1024; i++ {
		if err := e.Put([]byte{byte(i), byte(i >> 8)}, value); err != nil {
			t.Fatalf("Put #%d: %v", i, err)
		}
	}

	stat, err := e.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if stat.DataFileNum < 2 {
		t.Fatalf("expected rotation to produce multiple data files, got %d", stat.DataFileNum)
	}
}

func TestEngineCloseThenReopenRecoversState(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)

	e := openTestEngine(t, opts)
	for i := 0; i < 50; i++ {
		key := []byte{byte(i)}
		if err := e.Put(key, []byte("value")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := e.Delete([]byte{10}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(Config{Options: opts, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	keys := reopened.ListKeys()
	if len(keys) != 49 {
		t.Fatalf("got %d keys after reopen, want 49", len(keys))
	}
	if _, err := reopened.Get([]byte{10}); !errors.Is(err, ierrors.ErrKeyNotFound) {
		t.Fatalf("deleted key reappeared after reopen: %v", err)
	}
}

func TestEngineDatabaseIsUsingOnSecondOpen(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)

	e := openTestEngine(t, opts)
	_ = e

	if _, err := Open(Config{Options: opts, Logger: logger.NewNop()}); !errors.Is(err, ierrors.ErrDatabaseIsUsing) {
		t.Fatalf("expected DatabaseIsUsing on concurrent open, got %v", err)
	}
}

func TestEngineCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(Config{Options: testOptions(dir), Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

func TestEngineIteratorOrderAndReverse(t *testing.T) {
	dir := t.TempDir()
	e := openTestEngine(t, testOptions(dir))

	for _, k := range []string{"a", "b", "c", "d"} {
		if err := e.Put([]byte(k), []byte(k)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	it := e.NewIterator(options.DefaultIteratorOptions)
	defer it.Close()

	var forward []string
	for it.Rewind(); it.Valid(); it.Next() {
		forward = append(forward, string(it.Key()))
	}
	want := []string{"a", "b", "c", "d"}
	for i, k := range want {
		if forward[i] != k {
			t.Fatalf("forward order mismatch at %d: got %q, want %q", i, forward[i], k)
		}
	}

	revIt := e.NewIterator(options.IteratorOptions{Reverse: true})
	defer revIt.Close()

	var reverse []string
	for revIt.Rewind(); revIt.Valid(); revIt.Next() {
		reverse = append(reverse, string(revIt.Key()))
	}
	for i, k := range []string{"d", "c", "b", "a"} {
		if reverse[i] != k {
			t.Fatalf("reverse order mismatch at %d: got %q, want %q", i, reverse[i], k)
		}
	}
}
