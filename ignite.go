// Package ignite is the public facade over the Bitcask-model storage
// engine: an embedded, persistent key/value store combining an append-only
// log on disk with a pluggable in-memory (or persistent) index. It wires
// together internal/engine, internal/batch, and internal/merge behind a
// single Instance type.
package ignite

import (
	"go.uber.org/zap"

	"github.com/nilotpaldb/ignite/internal/batch"
	"github.com/nilotpaldb/ignite/internal/engine"
	"github.com/nilotpaldb/ignite/internal/merge"
	"github.com/nilotpaldb/ignite/pkg/logger"
	"github.com/nilotpaldb/ignite/pkg/options"
)

// Instance is the primary entry point for interacting with an Ignite
// database directory: point operations, ordered iteration, atomic batches,
// and merge/compaction, all serialized against one underlying engine.
type Instance struct {
	engine *engine.Engine
}

// Open validates and applies opts over the engine's defaults, then opens
// (or creates) the database directory, running startup recovery.
func Open(service string, opts ...options.OptionFunc) (*Instance, error) {
	log, err := logger.New(service)
	if err != nil {
		return nil, err
	}
	return OpenWithLogger(log, opts...)
}

// OpenWithLogger is Open, but with a caller-supplied logger instead of
// constructing one from a service name — useful for tests, which pass
// logger.NewNop() to keep output quiet.
func OpenWithLogger(log *zap.SugaredLogger, opts ...options.OptionFunc) (*Instance, error) {
	cfg := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	eng, err := engine.Open(engine.Config{Options: cfg, Logger: log})
	if err != nil {
		return nil, err
	}
	return &Instance{engine: eng}, nil
}

// Close flushes and releases every resource the instance holds. Safe to
// call more than once.
func (i *Instance) Close() error {
	return i.engine.Close()
}

// Put stores key/value, overwriting any existing value for key.
func (i *Instance) Put(key, value []byte) error {
	return i.engine.Put(key, value)
}

// Get retrieves the value currently associated with key.
func (i *Instance) Get(key []byte) ([]byte, error) {
	return i.engine.Get(key)
}

// Delete removes key. A missing key is a no-op success.
func (i *Instance) Delete(key []byte) error {
	return i.engine.Delete(key)
}

// ListKeys returns every indexed key in ascending lexicographic order.
func (i *Instance) ListKeys() [][]byte {
	return i.engine.ListKeys()
}

// Fold scans every key in ascending order, calling fn(key, value) for
// each; returning false from fn stops the scan immediately.
func (i *Instance) Fold(fn func(key, value []byte) bool) error {
	return i.engine.Fold(fn)
}

// NewIterator returns an ordered iterator over the current key set,
// honoring opts.Prefix and opts.Reverse.
func (i *Instance) NewIterator(opts options.IteratorOptions) *engine.Iterator {
	return i.engine.NewIterator(opts)
}

// NewWriteBatch returns a staging WriteBatch for atomic multi-key commits.
func (i *Instance) NewWriteBatch(opts options.BatchOptions) (*batch.WriteBatch, error) {
	return batch.New(i.engine, opts)
}

// Merge runs offline compaction: it rewrites every still-live record out of
// the sealed data files into a fresh sibling directory, then the next Open
// folds the rewritten files back in.
func (i *Instance) Merge() error {
	return merge.Run(i.engine, nil)
}

// Sync flushes the active data file to stable storage without rotating it.
func (i *Instance) Sync() error {
	return i.engine.Sync()
}

// Stat reports the point-in-time shape of the database directory.
func (i *Instance) Stat() (*engine.Stats, error) {
	return i.engine.Stat()
}

// Backup copies the database directory (excluding the directory lock) to destDir.
func (i *Instance) Backup(destDir string) error {
	return i.engine.Backup(destDir)
}
