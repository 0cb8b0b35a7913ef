// Package errors implements the engine's error-handling strategy: a small
// set of stable error kinds, each both a package-level sentinel (for
// errors.Is) and a structured wrapper carrying an ErrorCode plus
// operation-specific context (for structured logging). Every wrapper embeds
// *baseError, so errors.Unwrap/errors.As compose normally with this
// package's own helpers.
package errors

import (
	"errors"
	"os"
	"syscall"
)

// IsValidationError reports whether err (or any error in its chain) is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorageError reports whether err (or any error in its chain) is a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsIndexError reports whether err (or any error in its chain) is an *IndexError.
func IsIndexError(err error) bool {
	var ie *IndexError
	return errors.As(err, &ie)
}

// AsValidationError extracts a *ValidationError from err's chain, if present.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// AsStorageError extracts a *StorageError from err's chain, if present.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	ok := errors.As(err, &se)
	return se, ok
}

// AsIndexError extracts an *IndexError from err's chain, if present.
func AsIndexError(err error) (*IndexError, bool) {
	var ie *IndexError
	ok := errors.As(err, &ie)
	return ie, ok
}

// GetErrorCode dispatches across every wrapper type this package defines and
// returns its ErrorCode, falling back to ErrorCodeInternal for plain errors.
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var be interface{ Code() ErrorCode }
	if errors.As(err, &be) {
		return be.Code()
	}
	return ErrorCodeInternal
}

// GetErrorDetails dispatches across every wrapper type and returns its
// details map, or an empty map for plain errors.
func GetErrorDetails(err error) map[string]any {
	var bd interface{ Details() map[string]any }
	if errors.As(err, &bd) && bd.Details() != nil {
		return bd.Details()
	}
	return map[string]any{}
}

// ClassifyDirectoryCreationError turns a raw os.MkdirAll failure into a
// StorageError carrying the appropriate message for the underlying syscall
// condition (permission denied, read-only filesystem, disk full, or a
// generic IO failure).
func ClassifyDirectoryCreationError(err error, path string) *StorageError {
	msg := "failed to create database directory"
	switch {
	case os.IsPermission(err):
		msg = "permission denied creating database directory"
	case errors.Is(err, syscall.ENOSPC):
		msg = "no space left on device while creating database directory"
	case errors.Is(err, syscall.EROFS):
		msg = "filesystem is read-only, cannot create database directory"
	}
	return NewStorageError(err, ErrorCodeFailedToCreateDir, msg).WithPath(path)
}

// ClassifyFileOpenError turns a raw os.OpenFile failure into a StorageError
// carrying the appropriate code and file context.
func ClassifyFileOpenError(err error, fileName, path string) *StorageError {
	return NewStorageError(err, ErrorCodeFailedToOpenDataFile, "failed to open data file").
		WithFileName(fileName).
		WithPath(path)
}

// ClassifySyncError turns a raw fsync failure into a StorageError.
func ClassifySyncError(err error, fileName string) *StorageError {
	return NewStorageError(err, ErrorCodeFailedToSyncToDataFile, "failed to sync data file").
		WithFileName(fileName)
}
