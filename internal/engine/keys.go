package engine

import "encoding/binary"

// nonTransactionSeqNo is the reserved sequence number for non-batched writes.
const nonTransactionSeqNo uint64 = 0

// txnFinishedKey is the reserved sentinel key carried by a batch's TxnFinished
// terminator record, after the varint sequence prefix is stripped.
var txnFinishedKey = []byte("txn-fin")

// logRecordKeyWithSeq prepends seq, varint-encoded, to key — the on-disk key
// scheme every record is written under (§3 "Encoded-key on disk").
func logRecordKeyWithSeq(key []byte, seq uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, seq)

	out := make([]byte, n+len(key))
	copy(out, buf[:n])
	copy(out[n:], key)
	return out
}

// parseLogRecordKey splits an on-disk key back into its real key and the
// sequence number it was tagged with.
func parseLogRecordKey(key []byte) ([]byte, uint64) {
	seq, n := binary.Uvarint(key)
	return key[n:], seq
}
