// Package engine implements the core Bitcask-model storage engine: lifecycle
// (open/close), the append path and active-file rotation, the read path,
// startup recovery, sequence-number persistence, and the directory advisory
// lock. internal/batch and internal/merge are built on top of the exported
// methods here rather than folded into this package, matching the module's
// component boundaries.
package engine

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/internal/datafile"
	"github.com/nilotpaldb/ignite/internal/index"
	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
	"github.com/nilotpaldb/ignite/pkg/filesys"
	"github.com/nilotpaldb/ignite/pkg/options"
)

// flockFileName is the advisory lock target inside every engine directory (I5).
const flockFileName = "flock"

// Engine is the thread-safe core of an Ignite database: one directory, one
// active append-only file, a set of sealed files, and a pluggable in-memory
// (or persistent) index. See §4.5 for the full state list this mirrors.
type Engine struct {
	options options.Options
	log     *zap.SugaredLogger

	// mu guards activeFile, olderFiles, and the write-offset bookkeeping
	// that goes with rotation. Index access goes through the Indexer's own
	// internal synchronization, not this lock.
	mu         sync.RWMutex
	activeFile *datafile.DataFile
	olderFiles map[uint32]*datafile.DataFile

	index index.Indexer

	seqNo atomic.Uint64

	mergingLock     sync.Mutex
	batchCommitLock sync.Mutex

	seqNoFileExists bool
	isInitial       bool

	reclaimableSize atomic.Int64
	bytesSinceSync  uint

	fileLock *flock.Flock
	closed   atomic.Bool
}

// Config holds everything Open needs: the (unvalidated) options and a logger.
type Config struct {
	Options options.Options
	Logger  *zap.SugaredLogger
}

// Open validates opts, acquires the directory's exclusive advisory lock,
// finalizes any incomplete merge from a prior run, loads data files, and
// rebuilds (or trusts) the index, in the order §4.5 specifies.
func Open(cfg Config) (*Engine, error) {
	opts := cfg.Options
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = zapNop()
	}

	var isInitial bool
	if _, err := os.Stat(opts.DirPath); os.IsNotExist(err) {
		isInitial = true
		if err := filesys.CreateDir(opts.DirPath, 0755, true); err != nil {
			return nil, ierrors.ClassifyDirectoryCreationError(err, opts.DirPath)
		}
	}

	entries, err := os.ReadDir(opts.DirPath)
	if err != nil {
		return nil, ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToReadDir, "failed to read database directory").
			WithPath(opts.DirPath)
	}
	if len(entries) == 0 {
		isInitial = true
	}

	fl := flock.New(filepath.Join(opts.DirPath, flockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, ierrors.NewStorageError(err, ierrors.ErrorCodeDatabaseIsUsing, "failed to acquire database directory lock").
			WithPath(opts.DirPath)
	}
	if !locked {
		return nil, ierrors.ErrDatabaseIsUsing
	}

	idx, err := index.New(opts.IndexType, index.Config{DirPath: opts.DirPath, Logger: log})
	if err != nil {
		_ = fl.Unlock()
		return nil, err
	}

	e := &Engine{
		options:    opts,
		log:        log,
		olderFiles: make(map[uint32]*datafile.DataFile),
		index:      idx,
		fileLock:   fl,
		isInitial:  isInitial,
	}

	if err := e.loadMergeFiles(); err != nil {
		e.teardown()
		return nil, err
	}
	if err := e.loadDataFiles(); err != nil {
		e.teardown()
		return nil, err
	}

	if !idx.PersistsIndex() {
		if err := e.loadIndexFromHintFile(); err != nil {
			e.teardown()
			return nil, err
		}
		if err := e.loadIndexFromDataFiles(); err != nil {
			e.teardown()
			return nil, err
		}
	} else {
		if err := e.loadSeqNo(); err != nil {
			e.teardown()
			return nil, err
		}
	}

	log.Infow("engine opened",
		"dirPath", opts.DirPath, "indexType", opts.IndexType, "isInitial", isInitial, "seqNo", e.seqNo.Load())
	return e, nil
}

// teardown releases resources acquired mid-Open after a later step fails.
func (e *Engine) teardown() {
	if e.index != nil {
		_ = e.index.Close()
	}
	if e.fileLock != nil {
		_ = e.fileLock.Unlock()
	}
}

// Close writes the current sequence number to the SeqNoFile, fsyncs the
// active file, closes every file handle and the index, and releases the
// directory lock. Calling Close more than once is a no-op (idempotent).
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeFile == nil {
		closeErr := e.index.Close()
		_ = e.fileLock.Unlock()
		return closeErr
	}

	seqFile, err := datafile.OpenSeqNoFile(e.options.DirPath, e.log)
	if err != nil {
		return err
	}
	record := &codec.LogRecord{Value: []byte(strconv.FormatUint(e.seqNo.Load(), 10)), Type: codec.LogRecordNormal}
	encoded, _ := codec.EncodeLogRecord(record)
	if err := seqFile.Write(encoded); err != nil {
		return err
	}
	if err := seqFile.Sync(); err != nil {
		return err
	}
	if err := seqFile.Close(); err != nil {
		return err
	}

	if err := e.activeFile.Sync(); err != nil {
		return err
	}
	if err := e.activeFile.Close(); err != nil {
		return err
	}
	for _, f := range e.olderFiles {
		if err := f.Close(); err != nil {
			return err
		}
	}

	if err := e.index.Close(); err != nil {
		return err
	}
	// The lock file itself is never removed, only released (Open Question (c)-adjacent
	// note in §9: DatabaseIsUsing is advisory, not mandatory, across restarts).
	return e.fileLock.Unlock()
}

// Sync flushes the active file to stable storage without rotating it.
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return ierrors.ErrEngineClosed
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.activeFile == nil {
		return nil
	}
	return e.activeFile.Sync()
}

// Stats reports the point-in-time shape of the database directory.
type Stats struct {
	KeyNum      int
	DataFileNum int
	ReclaimSize int64
	DiskSize    int64
}

// Stat reports the number of keys in the index, the number of data files,
// the cumulative reclaimable bytes, and the total on-disk directory size
// (every regular file under DirPath, per the Supplemented Feature in
// SPEC_FULL.md's notes on db.rs's get_disk_usage).
func (e *Engine) Stat() (*Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	dataFileNum := len(e.olderFiles)
	if e.activeFile != nil {
		dataFileNum++
	}

	diskSize, err := dirSize(e.options.DirPath)
	if err != nil {
		return nil, err
	}

	return &Stats{
		KeyNum:      e.index.Size(),
		DataFileNum: dataFileNum,
		ReclaimSize: e.reclaimableSize.Load(),
		DiskSize:    diskSize,
	}, nil
}

// Backup copies every file in the database directory, except the directory
// lock itself, into destDir.
func (e *Engine) Backup(destDir string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entries, err := os.ReadDir(e.options.DirPath)
	if err != nil {
		return ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToReadDir, "failed to read database directory").
			WithPath(e.options.DirPath)
	}

	if err := filesys.CreateDir(destDir, 0755, true); err != nil {
		return ierrors.ClassifyDirectoryCreationError(err, destDir)
	}

	for _, entry := range entries {
		if entry.Name() == flockFileName {
			continue
		}

		src := filepath.Join(e.options.DirPath, entry.Name())
		dst := filepath.Join(destDir, entry.Name())

		if entry.IsDir() {
			if err := filesys.CopyDir(src, dst); err != nil {
				return ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToCreateDir, "failed to copy directory during backup").
					WithPath(src)
			}
			continue
		}
		if err := filesys.CopyFile(src, dst); err != nil {
			return ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToCreateDir, "failed to copy file during backup").
				WithPath(src)
		}
	}
	return nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToReadDir, "failed to compute directory size").WithPath(path)
	}
	return size, nil
}

// --- accessors used by internal/batch and internal/merge ---

// Options returns a copy of the engine's configuration.
func (e *Engine) Options() options.Options { return e.options }

// DirPath returns the database directory this engine is rooted at.
func (e *Engine) DirPath() string { return e.options.DirPath }

// Index exposes the live Indexer so merge can check record liveness.
func (e *Engine) Index() index.Indexer { return e.index }

// NextSeqNo atomically assigns and returns the next transaction sequence number.
func (e *Engine) NextSeqNo() uint64 { return e.seqNo.Add(1) }

// CurrentSeqNo returns the engine's sequence counter: the number the most
// recent commit was tagged with, or, before any commit in this session, the
// value recovery set (one past the highest sequence seen, so 1 on a fresh
// directory).
func (e *Engine) CurrentSeqNo() uint64 { return e.seqNo.Load() }

// LockBatchCommit serializes write-batch commits per §5's lock ordering.
func (e *Engine) LockBatchCommit() { e.batchCommitLock.Lock() }

// UnlockBatchCommit releases the batch-commit lock.
func (e *Engine) UnlockBatchCommit() { e.batchCommitLock.Unlock() }

// TryLockMerge attempts to acquire the merging lock, reporting MergeInProgress semantics to the caller.
func (e *Engine) TryLockMerge() bool { return e.mergingLock.TryLock() }

// UnlockMerge releases the merging lock.
func (e *Engine) UnlockMerge() { e.mergingLock.Unlock() }

// CanUseWriteBatch reports whether a write batch may safely assign sequence
// numbers: always true for the in-memory index variants, and true for the
// persistent B+ tree variant only when it isn't starting cold against an
// unseen prior run (§4.6's UnableToUseWriteBatch condition).
func (e *Engine) CanUseWriteBatch() bool {
	if !e.index.PersistsIndex() {
		return true
	}
	return e.isInitial || e.seqNoFileExists
}

// ApplyIndexPut applies a committed Normal effect to the index, tracking the
// size of whatever position it replaced for reclaim accounting.
func (e *Engine) ApplyIndexPut(key []byte, pos *codec.LogRecordPos) {
	if old := e.index.Put(key, pos); old != nil {
		e.reclaimableSize.Add(int64(old.Size))
	}
}

// ApplyIndexDelete applies a committed Deleted effect to the index.
func (e *Engine) ApplyIndexDelete(key []byte) {
	if old, existed := e.index.Delete(key); existed && old != nil {
		e.reclaimableSize.Add(int64(old.Size))
	}
}

// AppendRecord encodes and appends record to the active file under the
// engine's write lock, rotating first if necessary, and returns its position.
func (e *Engine) AppendRecord(record *codec.LogRecord) (*codec.LogRecordPos, error) {
	return e.appendLogRecordWithLock(record)
}

// RotateForMerge fsyncs and seals the current active file, opens a new
// active file at id+1 so concurrent writes land past the merge horizon, and
// returns every to-merge file (the previously sealed files plus the
// just-sealed one) sorted ascending by file id.
func (e *Engine) RotateForMerge() ([]*datafile.DataFile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeFile == nil {
		if err := e.setActiveDataFile(); err != nil {
			return nil, err
		}
	}
	if err := e.activeFile.Sync(); err != nil {
		return nil, err
	}

	toMergeIDs := make([]uint32, 0, len(e.olderFiles)+1)
	for id := range e.olderFiles {
		toMergeIDs = append(toMergeIDs, id)
	}
	toMergeIDs = append(toMergeIDs, e.activeFile.FileID)
	sort.Slice(toMergeIDs, func(i, j int) bool { return toMergeIDs[i] < toMergeIDs[j] })

	if err := e.setActiveDataFile(); err != nil {
		return nil, err
	}

	files := make([]*datafile.DataFile, 0, len(toMergeIDs))
	for _, id := range toMergeIDs {
		files = append(files, e.olderFiles[id])
	}
	return files, nil
}

func zapNop() *zap.SugaredLogger { return zap.NewNop().Sugar() }
