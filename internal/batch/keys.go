package batch

import "encoding/binary"

// txnFinishedKey is the reserved sentinel a TxnFinished record's key carries
// after its sequence prefix, per spec.md §4.6 step 6.
var txnFinishedKey = []byte("txn-fin")

// logRecordKeyWithSeq prefixes key with the varint-encoded sequence number,
// matching internal/engine's own non-exported helper of the same shape.
func logRecordKeyWithSeq(key []byte, seq uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, seq)
	out := make([]byte, n+len(key))
	copy(out, buf[:n])
	copy(out[n:], key)
	return out
}
