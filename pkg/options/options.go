// Package options provides the configuration surface for the Ignite
// storage engine: the directory layout, active-file rotation size, sync
// behavior, which Indexer variant to use, and the merge/compaction
// threshold, along with the write-batch and iterator option structs.
package options

import (
	"strings"

	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
)

// IndexType selects which Indexer implementation backs the engine.
type IndexType int8

const (
	// IndexTypeBTree is the in-memory sorted B-tree variant (github.com/google/btree).
	// It never persists between opens: the engine replays the full log on startup.
	IndexTypeBTree IndexType = iota

	// IndexTypeSkipList is the in-memory concurrent skip-list variant
	// (github.com/huandu/skiplist). Like the B-tree variant, it is rebuilt
	// from the log on every open.
	IndexTypeSkipList

	// IndexTypeBPTree is the persistent, on-disk B+ tree variant
	// (go.etcd.io/bbolt, single bucket). It survives restarts, so Open does
	// not replay the data-file log; it restores the sequence counter from
	// the seq-no file instead.
	IndexTypeBPTree
)

// Options configures an engine instance.
type Options struct {
	// DirPath is the directory the engine stores its data files, hint
	// file, merge-finished marker, seq-no file, and flock under.
	DirPath string `json:"dirPath"`

	// DataFileSize is the byte threshold at which the active data file is
	// sealed and a new active file is opened.
	DataFileSize int64 `json:"dataFileSize"`

	// SyncWrites, when true, fsyncs the active file after every Put/Delete
	// before returning to the caller.
	SyncWrites bool `json:"syncWrites"`

	// BytesPerSync, when nonzero and SyncWrites is false, fsyncs the
	// active file every time this many bytes have been appended to it
	// since the last sync.
	BytesPerSync uint `json:"bytesPerSync"`

	// IndexType selects which Indexer implementation to use.
	IndexType IndexType `json:"indexType"`

	// FileMergeThreshold is the minimum ratio of reclaimable bytes to the
	// total size of every regular file under DirPath required before Merge
	// will proceed.
	FileMergeThreshold float32 `json:"fileMergeThreshold"`

	// MaxOpenFiles is stored with the configuration but not read by the
	// engine: every sealed data file stays open until Close, whatever this
	// value is.
	MaxOpenFiles uint `json:"maxOpenFiles"`
}

// Validate checks that every option is within an acceptable range,
// returning a *pkg/errors.ValidationError describing the first violation.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.DirPath) == "" {
		return ierrors.NewValidationError(ierrors.ErrDirPathIsEmpty, ierrors.ErrorCodeDirPathIsEmpty, "dir path is empty").
			WithField("DirPath").
			WithRule("required")
	}
	if o.DataFileSize <= 0 {
		return ierrors.NewValidationError(ierrors.ErrDataFileSizeTooSmall, ierrors.ErrorCodeDataFileSizeTooSmall, "data file size must be greater than 0").
			WithField("DataFileSize").
			WithRule("min").
			WithProvided(o.DataFileSize)
	}
	if o.FileMergeThreshold < 0 || o.FileMergeThreshold > 1 {
		return ierrors.NewValidationError(ierrors.ErrInvalidMergeThreshold, ierrors.ErrorCodeInvalidMergeThreshold, "merge threshold must be between 0 and 1").
			WithField("FileMergeThreshold").
			WithRule("range").
			WithProvided(o.FileMergeThreshold)
	}
	return nil
}

// OptionFunc mutates an Options instance being built.
type OptionFunc func(*Options)

// WithDefaultOptions applies the engine's full default configuration.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDirPath sets the database directory.
func WithDirPath(dir string) OptionFunc {
	return func(o *Options) {
		dir = strings.TrimSpace(dir)
		if dir != "" {
			o.DirPath = dir
		}
	}
}

// WithDataFileSize sets the active data file rotation size, in bytes.
func WithDataFileSize(size int64) OptionFunc {
	return func(o *Options) {
		if size >= MinDataFileSize {
			o.DataFileSize = size
		}
	}
}

// WithSyncWrites toggles fsync-on-every-write.
func WithSyncWrites(sync bool) OptionFunc {
	return func(o *Options) {
		o.SyncWrites = sync
	}
}

// WithBytesPerSync sets the periodic-sync byte threshold.
func WithBytesPerSync(n uint) OptionFunc {
	return func(o *Options) {
		o.BytesPerSync = n
	}
}

// WithIndexType selects the Indexer variant.
func WithIndexType(t IndexType) OptionFunc {
	return func(o *Options) {
		o.IndexType = t
	}
}

// WithFileMergeThreshold sets the minimum reclaimable ratio required before Merge proceeds.
func WithFileMergeThreshold(ratio float32) OptionFunc {
	return func(o *Options) {
		if ratio >= 0 && ratio <= 1 {
			o.FileMergeThreshold = ratio
		}
	}
}

// WithMaxOpenFiles sets MaxOpenFiles (ignored when n is 0). The engine does
// not read this value; it limits nothing.
func WithMaxOpenFiles(n uint) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.MaxOpenFiles = n
		}
	}
}

// BatchOptions configures a WriteBatch.
type BatchOptions struct {
	// MaxBatchNum caps how many staged Put/Delete operations a single
	// batch may commit: Commit rejects a batch holding more than this many
	// with ExceedMaxBatchNum. Put and Delete themselves do not check it.
	MaxBatchNum uint `json:"maxBatchNum"`

	// SyncWrites, when true, fsyncs the active file after the batch's
	// TxnFinished record is appended.
	SyncWrites bool `json:"syncWrites"`
}

// IteratorOptions configures a key iterator.
type IteratorOptions struct {
	// Prefix restricts iteration to keys sharing this byte prefix. A nil
	// or empty prefix visits every key.
	Prefix []byte `json:"prefix"`

	// Reverse, when true, iterates keys in descending order.
	Reverse bool `json:"reverse"`
}
