package codec

import "testing"

func TestEncodeDecodeLogRecordRoundTrip(t *testing.T) {
	lr := &LogRecord{Key: []byte("hello"), Value: []byte("world"), Type: LogRecordNormal}

	encoded, size := EncodeLogRecord(lr)
	if int64(len(encoded)) != size {
		t.Fatalf("encoded length mismatch: got %d, size reported %d", len(encoded), size)
	}

	decoded, total := DecodeLogRecord(encoded)
	if decoded == nil {
		t.Fatal("expected a decoded record, got nil")
	}
	if total != size {
		t.Fatalf("total size mismatch: got %d, want %d", total, size)
	}
	if !decoded.CRCOK {
		t.Fatal("expected CRC to verify on an untouched record")
	}
	if string(decoded.Record.Key) != "hello" || string(decoded.Record.Value) != "world" {
		t.Fatalf("unexpected decoded record: %+v", decoded.Record)
	}
	if decoded.Record.Type != LogRecordNormal {
		t.Fatalf("unexpected record type: %v", decoded.Record.Type)
	}
}

func TestDecodeLogRecordRejectsCorruptedCRC(t *testing.T) {
	lr := &LogRecord{Key: []byte("k"), Value: []byte("v"), Type: LogRecordNormal}
	encoded, _ := EncodeLogRecord(lr)

	// Flip a single bit in the value byte.
	encoded[len(encoded)-crcSize-1] ^= 0x01

	decoded, _ := DecodeLogRecord(encoded)
	if decoded == nil {
		t.Fatal("expected a decoded record even when CRC fails")
	}
	if decoded.CRCOK {
		t.Fatal("expected CRC mismatch to be detected")
	}
}

func TestDecodeLogRecordEmptyHeaderSignalsEOF(t *testing.T) {
	header := make([]byte, MaxLogRecordHeaderSize)
	header[0] = LogRecordNormal
	// Both varints default to zero: key size 0, value size 0.

	decoded, headerSize := DecodeLogRecord(header)
	if decoded != nil {
		t.Fatalf("expected nil record for an empty header, got %+v", decoded)
	}
	if headerSize <= 0 {
		t.Fatalf("expected a positive header size even for the EOF sentinel, got %d", headerSize)
	}
}

func TestDecodeLogRecordHeaderReportsTotalSizeForOversizedRecord(t *testing.T) {
	lr := &LogRecord{Key: []byte("a-longer-key"), Value: []byte("a-value-longer-than-eleven-bytes"), Type: LogRecordNormal}
	encoded, size := EncodeLogRecord(lr)

	// Only the speculative header-sized prefix is available, as datafile's
	// ReadLogRecord would see it before issuing the full-record read.
	total, ok := DecodeLogRecordHeader(encoded[:MaxLogRecordHeaderSize])
	if !ok {
		t.Fatal("expected DecodeLogRecordHeader to parse the header")
	}
	if total != size {
		t.Fatalf("got total size %d, want %d", total, size)
	}
}

func TestDecodeLogRecordHeaderRejectsEOFSentinel(t *testing.T) {
	header := make([]byte, MaxLogRecordHeaderSize)
	header[0] = LogRecordNormal

	if _, ok := DecodeLogRecordHeader(header); ok {
		t.Fatal("expected the zero-length header to be rejected, not decoded")
	}
}

func TestEncodeDecodeLogRecordPos(t *testing.T) {
	pos := &LogRecordPos{FileID: 42, Offset: 1024, Size: 256}

	encoded := EncodeLogRecordPos(pos)
	decoded := DecodeLogRecordPos(encoded)

	if *decoded != *pos {
		t.Fatalf("position roundtrip mismatch: got %+v, want %+v", decoded, pos)
	}
}

func TestEncodeLogRecordDeletedHasEmptyValue(t *testing.T) {
	lr := &LogRecord{Key: []byte("gone"), Value: nil, Type: LogRecordDeleted}
	encoded, size := EncodeLogRecord(lr)

	decoded, total := DecodeLogRecord(encoded)
	if total != size {
		t.Fatalf("unexpected size: got %d, want %d", total, size)
	}
	if decoded.Record.Type != LogRecordDeleted {
		t.Fatalf("unexpected type: %v", decoded.Record.Type)
	}
	if len(decoded.Record.Value) != 0 {
		t.Fatalf("expected empty value for tombstone, got %q", decoded.Record.Value)
	}
}
