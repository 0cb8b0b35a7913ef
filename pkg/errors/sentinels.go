package errors

// Sentinel errors for every stable error kind the engine surfaces. Callers
// compare against these with errors.Is; baseError.Is matches on code, so a
// wrapped/detailed copy returned by the engine still satisfies errors.Is
// against the bare sentinel below.
var (
	ErrKeyIsEmpty            error = NewBaseError(nil, ErrorCodeKeyIsEmpty, "key is empty")
	ErrExceedMaxBatchNum     error = NewBaseError(nil, ErrorCodeExceedMaxBatchNum, "exceed the max batch num")
	ErrUnableToUseWriteBatch error = NewBaseError(nil, ErrorCodeUnableToUseWriteBatch, "unable to use write batch, because the persistent index has no seq-no file and the database is not new")
	ErrDirPathIsEmpty        error = NewBaseError(nil, ErrorCodeDirPathIsEmpty, "database dir path is empty")
	ErrDataFileSizeTooSmall  error = NewBaseError(nil, ErrorCodeDataFileSizeTooSmall, "database data file size must be greater than 0")
	ErrInvalidMergeThreshold error = NewBaseError(nil, ErrorCodeInvalidMergeThreshold, "invalid merge ratio, must be between 0 and 1")

	ErrKeyNotFound      error = NewBaseError(nil, ErrorCodeKeyNotFound, "key not found in database")
	ErrDataFileNotFound error = NewBaseError(nil, ErrorCodeDataFileNotFound, "data file is not found")

	ErrInvalidLogRecordCrc      error = NewBaseError(nil, ErrorCodeInvalidLogRecordCrc, "invalid crc value, log record maybe corrupted")
	ErrDatabaseDirectoryCorrupt error = NewBaseError(nil, ErrorCodeDatabaseDirectoryCorrupt, "the database directory maybe corrupted")
	ErrReadDataFileEOF          error = NewBaseError(nil, ErrorCodeReadDataFileEOF, "read data file reached EOF")

	ErrFailedToReadFromDataFile error = NewBaseError(nil, ErrorCodeFailedToReadFromDataFile, "failed to read from data file")
	ErrFailedToWriteToDataFile  error = NewBaseError(nil, ErrorCodeFailedToWriteToDataFile, "failed to write to data file")
	ErrFailedToSyncToDataFile   error = NewBaseError(nil, ErrorCodeFailedToSyncToDataFile, "failed to sync data file")
	ErrFailedToOpenDataFile     error = NewBaseError(nil, ErrorCodeFailedToOpenDataFile, "failed to open data file")
	ErrFailedToCreateDir        error = NewBaseError(nil, ErrorCodeFailedToCreateDir, "failed to create database directory")
	ErrFailedToReadDir          error = NewBaseError(nil, ErrorCodeFailedToReadDir, "failed to read database directory")

	ErrDatabaseIsUsing       error = NewBaseError(nil, ErrorCodeDatabaseIsUsing, "the database directory is used by another process")
	ErrMergeInProgress       error = NewBaseError(nil, ErrorCodeMergeInProgress, "merge is in progress, try again later")
	ErrMergeThresholdUnreach error = NewBaseError(nil, ErrorCodeMergeThresholdUnreach, "the reclaimable size does not reach the merge threshold")
	ErrMergeNoEnoughSpace    error = NewBaseError(nil, ErrorCodeMergeNoEnoughSpace, "not enough disk space for merge")
	ErrIndexUpdateFailed     error = NewBaseError(nil, ErrorCodeIndexUpdateFailed, "failed to update index")
	ErrEngineClosed          error = NewBaseError(nil, ErrorCodeEngineClosed, "database engine is already closed")
)
