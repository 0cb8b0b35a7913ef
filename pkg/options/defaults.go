package options

const (
	// DefaultDirPath is the base directory Ignite will use if the caller
	// never sets one explicitly.
	DefaultDirPath = "/var/lib/ignitedb"

	// MinDataFileSize is the smallest active data file size accepted by
	// WithDataFileSize; anything below this makes rotation too frequent
	// to be useful.
	MinDataFileSize int64 = 1 * 1024 * 1024

	// DefaultDataFileSize is the active data file size used when the
	// caller doesn't override it (256MB).
	DefaultDataFileSize int64 = 256 * 1024 * 1024

	// DefaultSyncWrites controls whether every Put/Delete fsyncs the
	// active file before returning.
	DefaultSyncWrites = false

	// DefaultBytesPerSync is the byte threshold at which the append path
	// fsyncs the active file when SyncWrites is false and BytesPerSync > 0.
	// Zero disables threshold-triggered sync entirely.
	DefaultBytesPerSync uint = 0

	// DefaultIndexType selects the sorted in-memory B-tree index variant.
	DefaultIndexType = IndexTypeBTree

	// DefaultFileMergeThreshold is the minimum reclaimable-space ratio
	// (reclaimable bytes / total bytes) required before Merge proceeds.
	DefaultFileMergeThreshold float32 = 0.5

	// DefaultMaxBatchNum caps how many records a single WriteBatch may stage.
	DefaultMaxBatchNum uint = 10000

	// DefaultMaxOpenFiles is the default MaxOpenFiles value. The engine does
	// not read it: sealed data files are never closed before Close.
	DefaultMaxOpenFiles uint = 128
)

// defaultOptions holds the configuration returned by NewDefaultOptions.
var defaultOptions = Options{
	DirPath:            DefaultDirPath,
	DataFileSize:       DefaultDataFileSize,
	SyncWrites:         DefaultSyncWrites,
	BytesPerSync:       DefaultBytesPerSync,
	IndexType:          DefaultIndexType,
	FileMergeThreshold: DefaultFileMergeThreshold,
	MaxOpenFiles:       DefaultMaxOpenFiles,
}

// NewDefaultOptions returns a copy of the engine's default configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}

// DefaultBatchOptions is the configuration a WriteBatch uses when the
// caller doesn't supply its own.
var DefaultBatchOptions = BatchOptions{
	MaxBatchNum: DefaultMaxBatchNum,
	SyncWrites:  true,
}

// DefaultIteratorOptions is the configuration an iterator uses when the
// caller doesn't supply its own: no prefix filter, forward order.
var DefaultIteratorOptions = IteratorOptions{
	Prefix:  nil,
	Reverse: false,
}
