// Package merge implements the offline compaction procedure (§4.7): rotate
// the active file, rewrite every still-live record from the sealed files
// into a fresh sibling engine, emit a hint file and a commit marker, then
// let the next open's load_merge_files swap the rewritten files in.
package merge

import (
	"encoding/binary"
	"errors"
	"os"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/internal/datafile"
	"github.com/nilotpaldb/ignite/internal/engine"
	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
)

// Run executes the merge procedure against e, per spec.md §4.7's
// preconditions and six-step procedure. log is used for the sub-engine
// merge writes into; if nil, a no-op logger is used.
func Run(e *engine.Engine, log *zap.SugaredLogger) error {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	stat, err := e.Stat()
	if err != nil {
		return err
	}

	if !e.TryLockMerge() {
		return ierrors.ErrMergeInProgress
	}
	defer e.UnlockMerge()

	if stat.DiskSize > 0 {
		ratio := float32(stat.ReclaimSize) / float32(stat.DiskSize)
		if ratio < e.Options().FileMergeThreshold {
			return ierrors.ErrMergeThresholdUnreach
		}
	}
	if err := checkFreeSpace(e.DirPath(), stat.DiskSize-stat.ReclaimSize); err != nil {
		return err
	}

	mergeDirPath := datafile.MergeDirName(e.DirPath())
	if err := os.RemoveAll(mergeDirPath); err != nil {
		return ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToCreateDir, "failed to clear stale merge directory").
			WithPath(mergeDirPath)
	}

	toMerge, err := e.RotateForMerge()
	if err != nil {
		return err
	}
	if len(toMerge) == 0 {
		return nil
	}

	mergeOpts := e.Options()
	mergeOpts.DirPath = mergeDirPath
	mergeEngine, err := engine.Open(engine.Config{Options: mergeOpts, Logger: log})
	if err != nil {
		return err
	}
	defer mergeEngine.Close()

	hintFile, err := datafile.OpenHintFile(mergeDirPath, log)
	if err != nil {
		return err
	}
	defer hintFile.Close()

	primaryIndex := e.Index()
	var maxFileID uint32
	for _, df := range toMerge {
		if df.FileID > maxFileID {
			maxFileID = df.FileID
		}

		var offset int64
		for {
			record, size, err := df.ReadLogRecord(offset)
			if err != nil {
				if errors.Is(err, ierrors.ErrReadDataFileEOF) {
					break
				}
				return err
			}

			if record.Type != codec.LogRecordTxnFinished {
				realKey := stripSeq(record.Key)
				pos := &codec.LogRecordPos{FileID: df.FileID, Offset: offset, Size: uint32(size)}
				if entry := primaryIndex.Get(realKey); entry != nil && entry.FileID == pos.FileID && entry.Offset == pos.Offset {
					rewritten := &codec.LogRecord{Key: withZeroSeq(realKey), Value: record.Value, Type: record.Type}
					newPos, err := mergeEngine.AppendRecord(rewritten)
					if err != nil {
						return err
					}
					if err := hintFile.WriteHintRecord(realKey, newPos); err != nil {
						return err
					}
				}
			}
			offset += size
		}
	}

	if err := mergeEngine.Sync(); err != nil {
		return err
	}
	if err := hintFile.Sync(); err != nil {
		return err
	}

	mergeFinFile, err := datafile.OpenMergeFinishedFile(mergeDirPath, log)
	if err != nil {
		return err
	}
	defer mergeFinFile.Close()

	marker := &codec.LogRecord{Value: []byte(strconv.FormatUint(uint64(maxFileID)+1, 10)), Type: codec.LogRecordNormal}
	encoded, _ := codec.EncodeLogRecord(marker)
	if err := mergeFinFile.Write(encoded); err != nil {
		return err
	}
	return mergeFinFile.Sync()
}

// checkFreeSpace fails with MergeNoEnoughSpace if the directory's
// filesystem lacks room for the post-merge live-data size.
func checkFreeSpace(dirPath string, liveSize int64) error {
	if liveSize <= 0 {
		return nil
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(dirPath, &stat); err != nil {
		return ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToReadDir, "failed to stat filesystem free space").
			WithPath(dirPath)
	}
	free := int64(stat.Bavail) * int64(stat.Bsize)
	if free < liveSize {
		return ierrors.ErrMergeNoEnoughSpace
	}
	return nil
}

// stripSeq strips the varint sequence prefix, returning the real key.
func stripSeq(key []byte) []byte {
	_, n := binary.Uvarint(key)
	return key[n:]
}

// withZeroSeq re-prefixes key with sequence number 0, per Supplemented
// Feature #5: merge always rewrites records non-transactionally.
func withZeroSeq(key []byte) []byte {
	out := make([]byte, 1+len(key))
	copy(out[1:], key)
	return out
}
