package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Codes mirror the engine's own stable error taxonomy. Each code except
// ErrorCodeInvalidInput and ErrorCodeInternal maps to exactly one sentinel
// in sentinels.go, so callers can branch with either
// errors.Is(err, ErrKeyNotFound) or GetErrorCode(err) == ErrorCodeKeyNotFound.
const (
	// Input validation failures.
	ErrorCodeKeyIsEmpty            ErrorCode = "KEY_IS_EMPTY"
	ErrorCodeExceedMaxBatchNum     ErrorCode = "EXCEED_MAX_BATCH_NUM"
	ErrorCodeUnableToUseWriteBatch ErrorCode = "UNABLE_TO_USE_WRITE_BATCH"
	ErrorCodeDirPathIsEmpty        ErrorCode = "DIR_PATH_IS_EMPTY"
	ErrorCodeDataFileSizeTooSmall  ErrorCode = "DATA_FILE_SIZE_TOO_SMALL"
	ErrorCodeInvalidMergeThreshold ErrorCode = "INVALID_MERGE_THRESHOLD"
	ErrorCodeInvalidInput          ErrorCode = "INVALID_INPUT"

	// Not-found conditions.
	ErrorCodeKeyNotFound      ErrorCode = "KEY_NOT_FOUND"
	ErrorCodeDataFileNotFound ErrorCode = "DATA_FILE_NOT_FOUND"

	// On-disk integrity failures.
	ErrorCodeInvalidLogRecordCrc      ErrorCode = "INVALID_LOG_RECORD_CRC"
	ErrorCodeDatabaseDirectoryCorrupt ErrorCode = "DATABASE_DIRECTORY_CORRUPTED"
	ErrorCodeReadDataFileEOF          ErrorCode = "READ_DATA_FILE_EOF"

	// Raw I/O failures.
	ErrorCodeFailedToReadFromDataFile ErrorCode = "FAILED_TO_READ_FROM_DATA_FILE"
	ErrorCodeFailedToWriteToDataFile  ErrorCode = "FAILED_TO_WRITE_TO_DATA_FILE"
	ErrorCodeFailedToSyncToDataFile   ErrorCode = "FAILED_TO_SYNC_TO_DATA_FILE"
	ErrorCodeFailedToOpenDataFile     ErrorCode = "FAILED_TO_OPEN_DATA_FILE"
	ErrorCodeFailedToCreateDir        ErrorCode = "FAILED_TO_CREATE_DATABASE_DIR"
	ErrorCodeFailedToReadDir          ErrorCode = "FAILED_TO_READ_DATABASE_DIR"

	// Concurrency / lifecycle state.
	ErrorCodeDatabaseIsUsing       ErrorCode = "DATABASE_IS_USING"
	ErrorCodeMergeInProgress       ErrorCode = "MERGE_IN_PROGRESS"
	ErrorCodeMergeThresholdUnreach ErrorCode = "MERGE_THRESHOLD_UNREACHED"
	ErrorCodeMergeNoEnoughSpace    ErrorCode = "MERGE_NO_ENOUGH_SPACE"
	ErrorCodeIndexUpdateFailed     ErrorCode = "INDEX_UPDATE_FAILED"
	ErrorCodeEngineClosed          ErrorCode = "ENGINE_CLOSED"

	// ErrorCodeInternal is the fallback for errors without a more specific code.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)
