package errors

// StorageError is a specialized error type for data-file and IO-backend
// failures. It embeds baseError to inherit chaining, codes, and details,
// then adds fields that pinpoint exactly which file and offset were
// involved.
type StorageError struct {
	*baseError
	fileID   uint32 // Which data file was being accessed when the error occurred.
	offset   int64  // Byte offset within the file where the problem happened.
	fileName string // Name of the file that caused the issue.
	path     string // Directory path the file lives under.
}

// NewStorageError creates a new storage-specific error.
func NewStorageError(err error, code ErrorCode, msg string) *StorageError {
	return &StorageError{baseError: NewBaseError(err, code, msg)}
}

// WithFileID sets which data file was involved in the error.
func (se *StorageError) WithFileID(id uint32) *StorageError {
	se.fileID = id
	return se
}

// WithOffset records the byte position where the error occurred.
func (se *StorageError) WithOffset(offset int64) *StorageError {
	se.offset = offset
	return se
}

// WithFileName captures which file was being processed when the error occurred.
func (se *StorageError) WithFileName(fileName string) *StorageError {
	se.fileName = fileName
	return se
}

// WithPath captures which directory was being processed when the error occurred.
func (se *StorageError) WithPath(path string) *StorageError {
	se.path = path
	return se
}

// FileID returns the data file identifier where the error occurred.
func (se *StorageError) FileID() uint32 {
	return se.fileID
}

// Offset returns the byte offset within the file where the error happened.
func (se *StorageError) Offset() int64 {
	return se.offset
}

// FileName returns the name of the file that was being processed.
func (se *StorageError) FileName() string {
	return se.fileName
}

// Path returns the directory path of the file that was being processed.
func (se *StorageError) Path() string {
	return se.path
}
