package engine

import (
	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/internal/datafile"
	"github.com/nilotpaldb/ignite/internal/fileio"
)

// setActiveDataFile seals the current active file (if any) into olderFiles
// and opens a fresh one with the next file id. Callers must hold e.mu.
func (e *Engine) setActiveDataFile() error {
	var nextID uint32
	if e.activeFile != nil {
		e.olderFiles[e.activeFile.FileID] = e.activeFile
		nextID = e.activeFile.FileID + 1
	}

	df, err := datafile.Open(e.options.DirPath, nextID, fileio.StandardFileIO, e.log)
	if err != nil {
		return err
	}
	e.activeFile = df
	return nil
}

// appendLogRecordWithLock serializes appends behind the engine's write lock.
func (e *Engine) appendLogRecordWithLock(record *codec.LogRecord) (*codec.LogRecordPos, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.appendLogRecord(record)
}

// appendLogRecord encodes and writes record to the active file, rotating to
// a new active file first if the write would exceed DataFileSize, and
// optionally fsyncing per SyncWrites/BytesPerSync. Callers must hold e.mu.
func (e *Engine) appendLogRecord(record *codec.LogRecord) (*codec.LogRecordPos, error) {
	if e.activeFile == nil {
		if err := e.setActiveDataFile(); err != nil {
			return nil, err
		}
	}

	encoded, size := codec.EncodeLogRecord(record)

	if e.activeFile.WriteOffset()+size > e.options.DataFileSize {
		if err := e.activeFile.Sync(); err != nil {
			return nil, err
		}
		if err := e.setActiveDataFile(); err != nil {
			return nil, err
		}
	}

	writeOffset := e.activeFile.WriteOffset()
	if err := e.activeFile.Write(encoded); err != nil {
		return nil, err
	}

	e.bytesSinceSync += uint(size)
	needSync := e.options.SyncWrites
	if !needSync && e.options.BytesPerSync > 0 && e.bytesSinceSync >= e.options.BytesPerSync {
		needSync = true
	}
	if needSync {
		if err := e.activeFile.Sync(); err != nil {
			return nil, err
		}
		e.bytesSinceSync = 0
	}

	return &codec.LogRecordPos{FileID: e.activeFile.FileID, Offset: writeOffset, Size: uint32(size)}, nil
}
