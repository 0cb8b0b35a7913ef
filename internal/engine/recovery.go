package engine

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/internal/datafile"
	"github.com/nilotpaldb/ignite/internal/fileio"
	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
)

// mmapForScan switches a sealed file onto the read-only memory-mapped
// backend for the duration of a recovery scan; the active file is left on
// the standard backend since it still receives appends once Open returns.
func (e *Engine) mmapForScan(id uint32) {
	if id == e.activeFile.FileID {
		return
	}
	if df := e.fileByID(id); df != nil {
		_ = df.SetIOManager(e.options.DirPath, fileio.MemoryMappedIO)
	}
}

// resetIOType switches a sealed file back onto the standard backend once
// its recovery scan has finished.
func (e *Engine) resetIOType(id uint32) {
	if id == e.activeFile.FileID {
		return
	}
	if df := e.fileByID(id); df != nil {
		_ = df.SetIOManager(e.options.DirPath, fileio.StandardFileIO)
	}
}

// loadMergeFiles finalizes an incomplete merge from a prior run, per §4.7's
// "on next open" paragraph. If the merge directory is missing, there is
// nothing to do. If present but lacking a MergeFinishedFile, it is a garbage
// partial attempt and is discarded whole. Otherwise every pre-horizon data
// file in the primary directory is removed and the merge directory's files
// (except SeqNoFile, per §9 open question (b), and the merge sub-engine's own
// flock file — moving that over the primary flock target would clobber the
// inode the primary engine's held lock refers to) are moved into the
// primary directory.
func (e *Engine) loadMergeFiles() error {
	mergeDirPath := datafile.MergeDirName(e.options.DirPath)
	if _, err := os.Stat(mergeDirPath); os.IsNotExist(err) {
		return nil
	}
	defer os.RemoveAll(mergeDirPath)

	entries, err := os.ReadDir(mergeDirPath)
	if err != nil {
		return ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToReadDir, "failed to read merge directory").
			WithPath(mergeDirPath)
	}

	var mergeFinished bool
	var moveNames []string
	for _, entry := range entries {
		name := entry.Name()
		if name == datafile.MergeFinishedFileName {
			mergeFinished = true
		}
		if name == datafile.SeqNoFileName || name == flockFileName {
			continue
		}
		moveNames = append(moveNames, name)
	}
	if !mergeFinished {
		return nil
	}

	mergeFinFile, err := datafile.OpenMergeFinishedFile(mergeDirPath, e.log)
	if err != nil {
		return err
	}
	record, _, err := mergeFinFile.ReadLogRecord(0)
	closeErr := mergeFinFile.Close()
	if err != nil {
		return ierrors.NewStorageError(err, ierrors.ErrorCodeDatabaseDirectoryCorrupt, "failed to read merge-finished marker").
			WithPath(mergeDirPath)
	}
	if closeErr != nil {
		return closeErr
	}

	horizon, err := strconv.ParseUint(string(record.Value), 10, 32)
	if err != nil {
		return ierrors.NewStorageError(err, ierrors.ErrorCodeDatabaseDirectoryCorrupt, "invalid merge-finished marker value").
			WithPath(mergeDirPath)
	}

	for fileID := uint32(0); fileID < uint32(horizon); fileID++ {
		name := datafile.GetDataFileName(e.options.DirPath, fileID)
		if _, err := os.Stat(name); err == nil {
			if err := os.Remove(name); err != nil {
				return ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToCreateDir, "failed to remove pre-merge data file").
					WithPath(name)
			}
		}
	}

	for _, name := range moveNames {
		src := filepath.Join(mergeDirPath, name)
		dst := filepath.Join(e.options.DirPath, name)
		if err := os.Rename(src, dst); err != nil {
			return ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToCreateDir, "failed to move merge file into primary directory").
				WithPath(dst)
		}
	}
	return nil
}

// loadDataFiles enumerates every NNNNNNNNN.data file in the directory, opens
// them in ascending id order, and promotes the highest id to active,
// creating id 0 fresh if the directory holds no data files yet.
func (e *Engine) loadDataFiles() error {
	entries, err := os.ReadDir(e.options.DirPath)
	if err != nil {
		return ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToReadDir, "failed to read database directory").
			WithPath(e.options.DirPath)
	}

	var fileIDs []uint32
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, datafile.DataFileSuffix) {
			continue
		}

		idStr := strings.TrimSuffix(name, datafile.DataFileSuffix)
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return ierrors.NewStorageError(err, ierrors.ErrorCodeDatabaseDirectoryCorrupt, "unrecognized data file name").
				WithFileName(name).
				WithPath(e.options.DirPath)
		}
		fileIDs = append(fileIDs, uint32(id))
	}
	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })

	for i, id := range fileIDs {
		df, err := datafile.Open(e.options.DirPath, id, fileio.StandardFileIO, e.log)
		if err != nil {
			return err
		}
		if i == len(fileIDs)-1 {
			e.activeFile = df
		} else {
			e.olderFiles[id] = df
		}
	}

	if e.activeFile == nil {
		return e.setActiveDataFile()
	}
	return nil
}

// loadIndexFromHintFile replays the merge-produced hint file, if present,
// directly into the index.
func (e *Engine) loadIndexFromHintFile() error {
	hintPath := filepath.Join(e.options.DirPath, datafile.HintFileName)
	if _, err := os.Stat(hintPath); os.IsNotExist(err) {
		return nil
	}

	hintFile, err := datafile.OpenHintFile(e.options.DirPath, e.log)
	if err != nil {
		return err
	}
	defer hintFile.Close()

	var offset int64
	for {
		record, size, err := hintFile.ReadLogRecord(offset)
		if err != nil {
			if errors.Is(err, ierrors.ErrReadDataFileEOF) {
				break
			}
			return err
		}
		e.index.Put(record.Key, codec.DecodeLogRecordPos(record.Value))
		offset += size
	}
	return nil
}

// recoveredEffect is one decoded record awaiting application to the index,
// either immediately (non-transactional) or once its batch's TxnFinished
// terminator is seen.
type recoveredEffect struct {
	key []byte
	typ codec.LogRecordType
	pos *codec.LogRecordPos
}

func (e *Engine) applyRecoveredEffect(r recoveredEffect) {
	switch r.typ {
	case codec.LogRecordNormal:
		e.index.Put(r.key, r.pos)
	case codec.LogRecordDeleted:
		e.index.Delete(r.key)
	}
}

// mergeHorizon reads the (already-moved) MergeFinishedFile in the primary
// directory, if any, returning the lowest file id the recovery scan needs to
// replay — records below it were already captured by the hint file.
func (e *Engine) mergeHorizon() uint32 {
	path := filepath.Join(e.options.DirPath, datafile.MergeFinishedFileName)
	if _, err := os.Stat(path); err != nil {
		return 0
	}

	mf, err := datafile.OpenMergeFinishedFile(e.options.DirPath, e.log)
	if err != nil {
		return 0
	}
	defer mf.Close()

	record, _, err := mf.ReadLogRecord(0)
	if err != nil {
		return 0
	}
	horizon, err := strconv.ParseUint(string(record.Value), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(horizon)
}

// loadIndexFromDataFiles replays every data file at or above the merge
// horizon in ascending order, buffering transactional records by sequence
// number until their TxnFinished terminator arrives (or discarding them at
// end of scan if it never does, per invariant I3), and rebuilds the engine's
// sequence counter from the highest sequence observed.
func (e *Engine) loadIndexFromDataFiles() error {
	if e.activeFile == nil {
		return nil
	}

	horizon := e.mergeHorizon()

	fileIDs := make([]uint32, 0, len(e.olderFiles)+1)
	for id := range e.olderFiles {
		fileIDs = append(fileIDs, id)
	}
	fileIDs = append(fileIDs, e.activeFile.FileID)
	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })

	pending := make(map[uint64][]recoveredEffect)
	var maxSeq uint64

	for _, id := range fileIDs {
		if id < horizon {
			continue
		}

		e.mmapForScan(id)
		df := e.fileByID(id)
		var offset int64
		for {
			record, size, err := df.ReadLogRecord(offset)
			if err != nil {
				if errors.Is(err, ierrors.ErrReadDataFileEOF) {
					break
				}
				e.resetIOType(id)
				return err
			}

			pos := &codec.LogRecordPos{FileID: id, Offset: offset, Size: uint32(size)}
			realKey, seq := parseLogRecordKey(record.Key)

			switch {
			case record.Type == codec.LogRecordTxnFinished:
				for _, eff := range pending[seq] {
					e.applyRecoveredEffect(eff)
				}
				delete(pending, seq)
			case seq == nonTransactionSeqNo:
				e.applyRecoveredEffect(recoveredEffect{key: realKey, typ: record.Type, pos: pos})
			default:
				pending[seq] = append(pending[seq], recoveredEffect{key: realKey, typ: record.Type, pos: pos})
			}

			if seq > maxSeq {
				maxSeq = seq
			}
			offset += size
		}

		if id == e.activeFile.FileID {
			e.activeFile.SetWriteOffset(offset)
		}
		e.resetIOType(id)
	}

	e.seqNo.Store(maxSeq + 1)
	return nil
}

// loadSeqNo reads and removes the SeqNoFile (present only between a clean
// close and the next open), used by the persistent B+ tree index variant to
// skip replaying the data-file log entirely.
func (e *Engine) loadSeqNo() error {
	path := filepath.Join(e.options.DirPath, datafile.SeqNoFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		e.seqNoFileExists = false
		return nil
	}

	seqFile, err := datafile.OpenSeqNoFile(e.options.DirPath, e.log)
	if err != nil {
		return err
	}

	record, _, err := seqFile.ReadLogRecord(0)
	if err != nil {
		_ = seqFile.Close()
		return err
	}
	seq, err := strconv.ParseUint(string(record.Value), 10, 64)
	if err != nil {
		_ = seqFile.Close()
		return ierrors.NewStorageError(err, ierrors.ErrorCodeDatabaseDirectoryCorrupt, "invalid sequence number file contents").
			WithPath(path)
	}

	if err := seqFile.Close(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return ierrors.NewStorageError(err, ierrors.ErrorCodeFailedToCreateDir, "failed to remove sequence number file").
			WithPath(path)
	}

	e.seqNo.Store(seq)
	e.seqNoFileExists = true

	if err := e.activeFile.Sync(); err != nil {
		return err
	}
	return nil
}
