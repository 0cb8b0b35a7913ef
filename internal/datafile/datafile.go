// Package datafile wraps an IO backend with a file id and an append-offset
// cursor, and knows how to name and open the four kinds of file an engine
// directory holds: numbered data files, the hint file, the merge-finished
// marker, and the sequence-number file.
package datafile

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/nilotpaldb/ignite/internal/codec"
	"github.com/nilotpaldb/ignite/internal/fileio"
	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
)

const (
	// DataFileSuffix is appended to the nine-digit zero-padded file id to
	// form a data file's name.
	DataFileSuffix = ".data"

	// HintFileName holds the merge-produced key -> position hints.
	HintFileName = "hint-index"

	// MergeFinishedFileName is the merge commit marker.
	MergeFinishedFileName = "merge-finished"

	// SeqNoFileName persists the highest committed sequence number across a clean close.
	SeqNoFileName = "seq-no"

	// MergeDirSuffix names the sibling directory a merge writes its rewritten
	// data and hint files into before it is atomically swapped in.
	MergeDirSuffix = "-merge"
)

// DataFileNameSuffixWidth is the zero-padded width of a data file id in its filename.
const DataFileNameSuffixWidth = 9

// DataFile is a single append-only file: an id, a write-offset cursor, and
// an IO backend. Reads and writes are safe for concurrent use; callers that
// need read-then-write atomicity (rotation) must coordinate externally, as
// the engine's active-file write lock does.
type DataFile struct {
	FileID      uint32
	writeOffset int64
	ioManager   fileio.IOManager
	mu          sync.RWMutex
	log         *zap.SugaredLogger
}

// GetDataFileName renders the on-disk filename for a data file id.
func GetDataFileName(dirPath string, fileID uint32) string {
	return filepath.Join(dirPath, fmt.Sprintf("%0*d%s", DataFileNameSuffixWidth, fileID, DataFileSuffix))
}

// MergeDirName renders the sibling directory path a merge of dirPath writes into.
func MergeDirName(dirPath string) string {
	clean := filepath.Clean(dirPath)
	return filepath.Join(filepath.Dir(clean), filepath.Base(clean)+MergeDirSuffix)
}

// Open opens (creating if necessary) the numbered data file for fileID
// using the given IO backend.
func Open(dirPath string, fileID uint32, ioType fileio.IOManagerType, log *zap.SugaredLogger) (*DataFile, error) {
	return newDataFile(GetDataFileName(dirPath, fileID), fileID, ioType, log)
}

// OpenHintFile opens the merge-produced hint file.
func OpenHintFile(dirPath string, log *zap.SugaredLogger) (*DataFile, error) {
	return newDataFile(filepath.Join(dirPath, HintFileName), 0, fileio.StandardFileIO, log)
}

// OpenMergeFinishedFile opens the merge commit-marker file.
func OpenMergeFinishedFile(dirPath string, log *zap.SugaredLogger) (*DataFile, error) {
	return newDataFile(filepath.Join(dirPath, MergeFinishedFileName), 0, fileio.StandardFileIO, log)
}

// OpenSeqNoFile opens the sequence-number persistence file.
func OpenSeqNoFile(dirPath string, log *zap.SugaredLogger) (*DataFile, error) {
	return newDataFile(filepath.Join(dirPath, SeqNoFileName), 0, fileio.StandardFileIO, log)
}

func newDataFile(fileName string, fileID uint32, ioType fileio.IOManagerType, log *zap.SugaredLogger) (*DataFile, error) {
	iom, err := fileio.NewIOManager(fileName, ioType)
	if err != nil {
		return nil, err
	}

	size, err := iom.Size()
	if err != nil {
		return nil, err
	}

	return &DataFile{FileID: fileID, writeOffset: size, ioManager: iom, log: log}, nil
}

// SetIOManager swaps the backend a data file reads through, e.g. to switch
// a sealed file onto the memory-mapped backend once it stops receiving
// appends.
func (df *DataFile) SetIOManager(dirPath string, ioType fileio.IOManagerType) error {
	df.mu.Lock()
	defer df.mu.Unlock()

	if err := df.ioManager.Close(); err != nil {
		return err
	}

	iom, err := fileio.NewIOManager(GetDataFileName(dirPath, df.FileID), ioType)
	if err != nil {
		return err
	}
	df.ioManager = iom
	return nil
}

// WriteOffset returns the current append-cursor position.
func (df *DataFile) WriteOffset() int64 {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return df.writeOffset
}

// SetWriteOffset forcibly repositions the append cursor, used by recovery
// once a scan determines where the active file's live data actually ends.
func (df *DataFile) SetWriteOffset(offset int64) {
	df.mu.Lock()
	defer df.mu.Unlock()
	df.writeOffset = offset
}

// Write appends encoded record bytes and advances the write offset.
func (df *DataFile) Write(buf []byte) error {
	df.mu.Lock()
	defer df.mu.Unlock()

	n, err := df.ioManager.Write(buf)
	if err != nil {
		return err
	}
	df.writeOffset += int64(n)
	return nil
}

// WriteHintRecord encodes a Normal record whose value is the varint-encoded
// position and appends it — the convenience merge uses to populate a hint file.
func (df *DataFile) WriteHintRecord(key []byte, pos *codec.LogRecordPos) error {
	record := &codec.LogRecord{Key: key, Value: codec.EncodeLogRecordPos(pos), Type: codec.LogRecordNormal}
	encoded, _ := codec.EncodeLogRecord(record)
	return df.Write(encoded)
}

// Sync flushes the file to stable storage.
func (df *DataFile) Sync() error {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return df.ioManager.Sync()
}

// Close releases the underlying IO resource.
func (df *DataFile) Close() error {
	df.mu.Lock()
	defer df.mu.Unlock()
	return df.ioManager.Close()
}

// ReadLogRecord decodes the record starting at offset. It first reads
// MaxLogRecordHeaderSize bytes speculatively (clamped to what remains in
// the file), parses the header, then re-reads the full record once the key
// and value sizes are known. A header whose two length fields are both
// zero is the end-of-file sentinel and is translated to ErrReadDataFileEOF.
func (df *DataFile) ReadLogRecord(offset int64) (*codec.LogRecord, int64, error) {
	size, err := df.fileSize()
	if err != nil {
		return nil, 0, err
	}

	headerBufSize := int64(codec.MaxLogRecordHeaderSize)
	if offset+headerBufSize > size {
		headerBufSize = size - offset
	}
	if headerBufSize <= 0 {
		return nil, 0, ierrors.ErrReadDataFileEOF
	}

	headerBuf := make([]byte, headerBufSize)
	if _, err := df.readAt(headerBuf, offset); err != nil {
		return nil, 0, err
	}

	// Parse only the header here: the header alone never carries enough
	// bytes to run DecodeLogRecord's CRC check, so running it against
	// headerBuf would misreport any record whose key+value overflow the
	// speculative buffer as the zero-length EOF sentinel.
	totalSize, ok := codec.DecodeLogRecordHeader(headerBuf)
	if !ok {
		// Either the header itself didn't fit, or it parsed to the
		// zero-length EOF sentinel; either way recovery should stop here.
		return nil, 0, ierrors.ErrReadDataFileEOF
	}

	full := make([]byte, totalSize)
	if _, err := df.readAt(full, offset); err != nil {
		return nil, 0, err
	}

	decoded, total := codec.DecodeLogRecord(full)
	if decoded == nil {
		return nil, 0, ierrors.ErrReadDataFileEOF
	}
	if !decoded.CRCOK {
		return nil, 0, ierrors.ErrInvalidLogRecordCrc
	}
	return decoded.Record, total, nil
}

func (df *DataFile) fileSize() (int64, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return df.ioManager.Size()
}

func (df *DataFile) readAt(buf []byte, offset int64) (int, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return df.ioManager.Read(buf, offset)
}
