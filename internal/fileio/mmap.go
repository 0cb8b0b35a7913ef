package fileio

import (
	"os"

	"golang.org/x/exp/mmap"

	ierrors "github.com/nilotpaldb/ignite/pkg/errors"
)

// MMapIOManager maps a sealed file into memory once at open and serves
// every subsequent read from that mapping. It never writes: this backend
// exists purely to accelerate recovery scans over files that no longer
// receive appends.
type MMapIOManager struct {
	reader *mmap.ReaderAt
	name   string
}

// NewMMapIOManager opens fileName (creating it empty if it does not yet
// exist, matching FileIOManager's create-on-open behavior) and maps it
// read-only.
func NewMMapIOManager(fileName string) (*MMapIOManager, error) {
	if _, err := os.Stat(fileName); os.IsNotExist(err) {
		f, createErr := os.OpenFile(fileName, os.O_CREATE|os.O_RDWR, dataFilePerm)
		if createErr != nil {
			return nil, ierrors.ClassifyFileOpenError(createErr, fileName, "")
		}
		f.Close()
	}

	reader, err := mmap.Open(fileName)
	if err != nil {
		return nil, ierrors.ClassifyFileOpenError(err, fileName, "")
	}

	return &MMapIOManager{reader: reader, name: fileName}, nil
}

// Read copies len(buf) bytes starting at offset out of the mapping. Reading
// past the end of the mapping fails with ReadDataFileEOF, matching the
// codec's end-of-scan signal.
func (m *MMapIOManager) Read(buf []byte, offset int64) (int, error) {
	if offset+int64(len(buf)) > int64(m.reader.Len()) {
		return 0, ierrors.ErrReadDataFileEOF
	}
	return m.reader.ReadAt(buf, offset)
}

// Write is unsupported: the mmap backend is read-only.
func (m *MMapIOManager) Write(buf []byte) (int, error) {
	return 0, ierrors.NewStorageError(nil, ierrors.ErrorCodeFailedToWriteToDataFile, "mmap IO backend is read-only").
		WithFileName(m.name)
}

// Sync is unsupported: the mmap backend is read-only.
func (m *MMapIOManager) Sync() error {
	return ierrors.NewStorageError(nil, ierrors.ErrorCodeFailedToSyncToDataFile, "mmap IO backend is read-only").
		WithFileName(m.name)
}

// Size returns the length of the mapped region.
func (m *MMapIOManager) Size() (int64, error) {
	return int64(m.reader.Len()), nil
}

// Close releases the mapping.
func (m *MMapIOManager) Close() error {
	return m.reader.Close()
}
