package engine

import (
	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/internal/datafile"
	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
	"github.com/nilotpaldb/ignite/pkg/options"
)

// Put stores key/value as a Normal record tagged with the non-transactional
// sequence number. If the key already had a position, its record size is
// added to the reclaim counter.
func (e *Engine) Put(key, value []byte) error {
	if e.closed.Load() {
		return ierrors.ErrEngineClosed
	}
	if len(key) == 0 {
		return ierrors.ErrKeyIsEmpty
	}

	record := &codec.LogRecord{
		Key:   logRecordKeyWithSeq(key, nonTransactionSeqNo),
		Value: value,
		Type:  codec.LogRecordNormal,
	}
	pos, err := e.appendLogRecordWithLock(record)
	if err != nil {
		return err
	}

	e.ApplyIndexPut(key, pos)
	return nil
}

// Get looks up key in the index, reads its referenced record, and returns
// the value, or KeyNotFound if the key is absent or its record is a tombstone.
func (e *Engine) Get(key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ierrors.ErrEngineClosed
	}
	if len(key) == 0 {
		return nil, ierrors.ErrKeyIsEmpty
	}

	pos := e.index.Get(key)
	if pos == nil {
		return nil, ierrors.NewKeyNotFoundError(string(key))
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.readValueAt(pos)
}

// Delete is a no-op (success) when the key is absent (§4.5, §9 open
// question (c)). Otherwise it appends a tombstone and removes the key from
// the index, adding both the tombstone's and the prior record's size to the
// reclaim counter.
func (e *Engine) Delete(key []byte) error {
	if e.closed.Load() {
		return ierrors.ErrEngineClosed
	}
	if len(key) == 0 {
		return ierrors.ErrKeyIsEmpty
	}
	if e.index.Get(key) == nil {
		return nil
	}

	record := &codec.LogRecord{Key: logRecordKeyWithSeq(key, nonTransactionSeqNo), Type: codec.LogRecordDeleted}
	pos, err := e.appendLogRecordWithLock(record)
	if err != nil {
		return err
	}
	e.reclaimableSize.Add(int64(pos.Size))

	e.ApplyIndexDelete(key)
	return nil
}

// ListKeys returns every indexed key in ascending lexicographic order.
func (e *Engine) ListKeys() [][]byte {
	return e.index.ListKeys()
}

// Fold scans every key in ascending order, calling fn(key, value) for each.
// The scan stops immediately if fn returns false, and holds only a read
// lock for its duration so concurrent readers are never blocked.
func (e *Engine) Fold(fn func(key, value []byte) bool) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	it := e.index.Iterator(options.DefaultIteratorOptions)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		value, err := e.readValueAt(it.Value())
		if err != nil {
			return err
		}
		if !fn(it.Key(), value) {
			break
		}
	}
	return nil
}

// fileByID resolves a file id to its DataFile handle, whether active or sealed.
func (e *Engine) fileByID(id uint32) *datafile.DataFile {
	if e.activeFile != nil && e.activeFile.FileID == id {
		return e.activeFile
	}
	return e.olderFiles[id]
}

// readValueAt reads and validates the record at pos. Callers must hold at
// least e.mu.RLock.
func (e *Engine) readValueAt(pos *codec.LogRecordPos) ([]byte, error) {
	df := e.fileByID(pos.FileID)
	if df == nil {
		return nil, ierrors.ErrDataFileNotFound
	}

	record, _, err := df.ReadLogRecord(pos.Offset)
	if err != nil {
		return nil, err
	}
	if record.Type == codec.LogRecordDeleted {
		return nil, ierrors.NewKeyNotFoundError("")
	}
	return record.Value, nil
}
