// Package batch implements the WriteBatch atomic multi-key transaction
// protocol (§4.6): a staging map applied to the engine's log and index only
// at commit, under the engine's batch-commit lock, with a single shared
// sequence number tagging every record in the batch.
package batch

import (
	"sync"

	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/internal/index"
	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
	"github.com/nilotpaldb/ignite/pkg/options"
)

// engineHandle is the subset of *internal/engine.Engine a WriteBatch needs.
// Kept as an interface so this package never imports internal/engine
// directly, matching the module's component boundaries.
type engineHandle interface {
	NextSeqNo() uint64
	LockBatchCommit()
	UnlockBatchCommit()
	CanUseWriteBatch() bool
	AppendRecord(record *codec.LogRecord) (*codec.LogRecordPos, error)
	ApplyIndexPut(key []byte, pos *codec.LogRecordPos)
	ApplyIndexDelete(key []byte)
	Sync() error
	Index() index.Indexer
}

// stagedOp records what a staged key should become at commit.
type stagedOp struct {
	value   []byte
	deleted bool
}

// WriteBatch stages Put/Delete operations under a single sequence number,
// applied to the log and index only when Commit succeeds.
type WriteBatch struct {
	mu      sync.Mutex
	engine  engineHandle
	options options.BatchOptions
	staging map[string]*stagedOp
}

// New constructs a WriteBatch against engine, refusing with
// UnableToUseWriteBatch if the persistent index variant can't safely assign
// a sequence number yet (§4.6's cold-start guard).
func New(engine engineHandle, opts options.BatchOptions) (*WriteBatch, error) {
	if !engine.CanUseWriteBatch() {
		return nil, ierrors.ErrUnableToUseWriteBatch
	}
	return &WriteBatch{
		engine:  engine,
		options: opts,
		staging: make(map[string]*stagedOp),
	}, nil
}

// Put stages key/value for the next Commit.
func (b *WriteBatch) Put(key, value []byte) error {
	if len(key) == 0 {
		return ierrors.ErrKeyIsEmpty
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.staging[string(key)] = &stagedOp{value: value}
	return nil
}

// Delete stages key's removal for the next Commit, removing any staged Put
// for the same key instead of leaving a stale value that could be committed
// (Supplemented Feature #4). A delete for a key absent from both the
// staging map and the index is a no-op.
func (b *WriteBatch) Delete(key []byte) error {
	if len(key) == 0 {
		return ierrors.ErrKeyIsEmpty
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, staged := b.staging[string(key)]; !staged && b.engine.Index().Get(key) == nil {
		return nil
	}
	b.staging[string(key)] = &stagedOp{deleted: true}
	return nil
}

// Commit runs the nine-step protocol in §4.6: short-circuit on an empty
// batch, reject an oversized one, then under the engine's batch-commit lock
// assign one sequence number, append every staged record plus a terminating
// TxnFinished record, optionally fsync, and only then apply the staged
// effects to the index.
func (b *WriteBatch) Commit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.staging) == 0 {
		return nil
	}
	if uint(len(b.staging)) > b.options.MaxBatchNum {
		return ierrors.ErrExceedMaxBatchNum
	}

	b.engine.LockBatchCommit()
	defer b.engine.UnlockBatchCommit()

	seq := b.engine.NextSeqNo()

	type appliedEffect struct {
		key     []byte
		pos     *codec.LogRecordPos
		deleted bool
	}
	effects := make([]appliedEffect, 0, len(b.staging))

	for rawKey, op := range b.staging {
		key := []byte(rawKey)
		recordType := codec.LogRecordNormal
		value := op.value
		if op.deleted {
			recordType = codec.LogRecordDeleted
			value = nil
		}

		record := &codec.LogRecord{
			Key:   logRecordKeyWithSeq(key, seq),
			Value: value,
			Type:  recordType,
		}
		pos, err := b.engine.AppendRecord(record)
		if err != nil {
			return err
		}
		effects = append(effects, appliedEffect{key: key, pos: pos, deleted: op.deleted})
	}

	finishRecord := &codec.LogRecord{
		Key:  logRecordKeyWithSeq(txnFinishedKey, seq),
		Type: codec.LogRecordTxnFinished,
	}
	if _, err := b.engine.AppendRecord(finishRecord); err != nil {
		return err
	}

	if b.options.SyncWrites {
		if err := b.engine.Sync(); err != nil {
			return err
		}
	}

	for _, eff := range effects {
		if eff.deleted {
			b.engine.ApplyIndexDelete(eff.key)
		} else {
			b.engine.ApplyIndexPut(eff.key, eff.pos)
		}
	}

	b.staging = make(map[string]*stagedOp)
	return nil
}
