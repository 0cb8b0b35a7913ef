// Package codec implements the on-disk LogRecord format: a type tag, two
// varint length prefixes, the raw key and value bytes, and a trailing
// big-endian CRC32 over everything that precedes it. It also implements the
// varint-encoded LogRecordPos used by hint records.
package codec

import (
	"encoding/binary"
	"hash/crc32"
)

// LogRecordType tags what kind of record a LogRecord is.
type LogRecordType = byte

const (
	// LogRecordNormal is a live key/value write.
	LogRecordNormal LogRecordType = 1
	// LogRecordDeleted is a tombstone: value is empty, key marks an absence.
	LogRecordDeleted LogRecordType = 2
	// LogRecordTxnFinished terminates a batch: key carries the reserved
	// sentinel, value is empty.
	LogRecordTxnFinished LogRecordType = 3
)

// MaxLogRecordHeaderSize is the largest a record header can be: one type
// byte plus two maximal u32 varints. Recovery reads this many bytes
// speculatively before it knows the true header length.
const MaxLogRecordHeaderSize = 1 + binary.MaxVarintLen32*2

// crcSize is the width of the trailing CRC32 field.
const crcSize = 4

// LogRecord is one entry in the append-only log: a key, a value, and a type tag.
type LogRecord struct {
	Key   []byte
	Value []byte
	Type  LogRecordType
}

// LogRecordPos locates a record on disk: which data file, at what offset,
// and how many bytes it occupies.
type LogRecordPos struct {
	FileID uint32
	Offset int64
	Size   uint32
}

// logRecordHeader is the parsed form of the fixed-shape prefix of an
// encoded record, before the variable-length key and value.
type logRecordHeader struct {
	recordType LogRecordType
	keySize    uint32
	valueSize  uint32
}

// EncodeLogRecord serializes a LogRecord as:
//
//	+------+-----------+-------------+-----+-------+-----------+
//	| type | key size  | value size  | key | value | crc32(be) |
//	+------+-----------+-------------+-----+-------+-----------+
//	1 byte  varint      varint        N     M       4 bytes
//
// and returns the encoded bytes alongside their total length.
func EncodeLogRecord(lr *LogRecord) ([]byte, int64) {
	header := make([]byte, MaxLogRecordHeaderSize)
	header[0] = lr.Type

	index := 1
	index += binary.PutVarint(header[index:], int64(len(lr.Key)))
	index += binary.PutVarint(header[index:], int64(len(lr.Value)))

	size := index + len(lr.Key) + len(lr.Value) + crcSize
	encoded := make([]byte, size)

	copy(encoded, header[:index])
	copy(encoded[index:], lr.Key)
	copy(encoded[index+len(lr.Key):], lr.Value)

	crc := crc32.ChecksumIEEE(encoded[:index+len(lr.Key)+len(lr.Value)])
	binary.BigEndian.PutUint32(encoded[size-crcSize:], crc)

	return encoded, int64(size)
}

// decodeLogRecordHeader parses the type tag and the two length varints from
// the front of buf, returning the header and how many bytes it occupied.
// buf must hold at least MaxLogRecordHeaderSize bytes, or end early on a
// genuinely short file.
func decodeLogRecordHeader(buf []byte) (*logRecordHeader, int64) {
	if len(buf) < 1 {
		return nil, 0
	}

	h := &logRecordHeader{recordType: buf[0]}
	index := 1

	keySize, n := binary.Varint(buf[index:])
	if n <= 0 {
		return nil, 0
	}
	h.keySize = uint32(keySize)
	index += n

	valueSize, n := binary.Varint(buf[index:])
	if n <= 0 {
		return nil, 0
	}
	h.valueSize = uint32(valueSize)
	index += n

	return h, int64(index)
}

// DecodeLogRecordHeader parses only the fixed-shape header prefix of buf —
// the type tag and the two length varints — and reports the total encoded
// size (header + key + value + crc) the full record will occupy. It
// returns ok=false both when buf doesn't yet hold a complete header and
// when the header encodes the zero-length end-of-file sentinel; callers
// read the speculative header with this before issuing the full-record
// read, since the header alone doesn't carry enough bytes to run the CRC
// check that DecodeLogRecord performs.
func DecodeLogRecordHeader(buf []byte) (totalSize int64, ok bool) {
	header, headerSize := decodeLogRecordHeader(buf)
	if header == nil {
		return 0, false
	}
	if header.keySize == 0 && header.valueSize == 0 {
		return 0, false
	}
	return headerSize + int64(header.keySize) + int64(header.valueSize) + crcSize, true
}

// DecodedRecord is the result of decoding one on-disk record: the record
// itself plus its total encoded size (header + key + value + crc), which
// callers need to advance their read offset.
type DecodedRecord struct {
	Record    *LogRecord
	TotalSize int64
	CRCOK     bool
}

// DecodeLogRecord parses a full record out of buf, which must contain at
// least the header, key, value, and trailing CRC (callers typically read
// MaxLogRecordHeaderSize speculatively, parse the header, then read the
// remainder once the true sizes are known — see internal/datafile).
// A header whose key size and value size are both zero signals end-of-file
// to the caller; DecodeLogRecord returns a nil *DecodedRecord together with
// the header's size in that case rather than erroring, so the caller can
// translate it into ReadDataFileEOF.
func DecodeLogRecord(buf []byte) (*DecodedRecord, int64) {
	header, headerSize := decodeLogRecordHeader(buf)
	if header == nil {
		return nil, 0
	}
	if header.keySize == 0 && header.valueSize == 0 {
		return nil, headerSize
	}

	total := int(headerSize) + int(header.keySize) + int(header.valueSize) + crcSize
	if len(buf) < total {
		return nil, 0
	}

	key := buf[headerSize : int64(headerSize)+int64(header.keySize)]
	value := buf[int64(headerSize)+int64(header.keySize) : total-crcSize]

	gotCRC := binary.BigEndian.Uint32(buf[total-crcSize : total])
	wantCRC := crc32.ChecksumIEEE(buf[:total-crcSize])

	return &DecodedRecord{
		Record:    &LogRecord{Key: key, Value: value, Type: header.recordType},
		TotalSize: int64(total),
		CRCOK:     gotCRC == wantCRC,
	}, int64(total)
}

// EncodeLogRecordPos encodes a LogRecordPos as varint(file-id) ||
// varint(offset) || varint(size), used as the value of hint records.
func EncodeLogRecordPos(pos *LogRecordPos) []byte {
	buf := make([]byte, binary.MaxVarintLen32*2+binary.MaxVarintLen64)
	index := 0

	index += binary.PutVarint(buf[index:], int64(pos.FileID))
	index += binary.PutVarint(buf[index:], pos.Offset)
	index += binary.PutVarint(buf[index:], int64(pos.Size))

	return buf[:index]
}

// DecodeLogRecordPos reverses EncodeLogRecordPos.
func DecodeLogRecordPos(buf []byte) *LogRecordPos {
	index := 0

	fileID, n := binary.Varint(buf[index:])
	index += n

	offset, n := binary.Varint(buf[index:])
	index += n

	size, _ := binary.Varint(buf[index:])

	return &LogRecordPos{
		FileID: uint32(fileID),
		Offset: offset,
		Size:   uint32(size),
	}
}
