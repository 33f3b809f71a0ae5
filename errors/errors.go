// Package errors defines the closed, gapless, negative-integer error
// taxonomy returned by every cheekyfs operation.
//
// The numeric values match the original C library's error enum exactly
// (spec.md §3: "any implementation that changes them must also bump the
// on-disk version" applies to layout constants, but the error codes
// themselves are part of the wire-level contract tests were written
// against, so they're preserved here too).
package errors

import "fmt"

// FSError is a named error code. It implements the error interface directly,
// so a bare FSError can be returned and compared with errors.Is.
type FSError int

// The full set of error codes, in the same order as the reference
// implementation's enum. The first is the most negative; every subsequent
// constant is exactly one greater, with no gaps.
const (
	ErrOutOfMemory FSError = -100 + iota
	ErrFileNotFound
	ErrBadFileType
	ErrBadFD
	ErrBlockIO
	ErrBlockFault
	ErrDirNotEmpty
	ErrFileFull
	ErrNotEnoughData
	ErrInvalidName
	ErrInvalidType
	ErrInvalidDataFile
	ErrNameTaken
	ErrInvalidStartLoc
	ErrInvalidPath
	ErrFileSystemFull
	ErrTooManyOpen
	ErrNoMoreBlocks

	// ErrAdjustErrorCodes is returned only by Initialize, and only when Sane
	// reports that some code is no longer negative: the taxonomy has grown
	// past its budget and needs renumbering.
	ErrAdjustErrorCodes

	ErrNotEnoughBlocksForFiles
	ErrBlocksTooSmallForFile
	ErrCantDeleteRoot
	ErrFileOpen

	errMax // sentinel, one past the last real code
)

var messages = map[FSError]string{
	ErrOutOfMemory:             "could not allocate memory",
	ErrFileNotFound:            "the file specified by the path could not be found",
	ErrBadFileType:             "file was not the correct type for the function",
	ErrBadFD:                   "supplied file descriptor was not valid",
	ErrBlockIO:                 "the block I/O layer encountered an error",
	ErrBlockFault:              "specified read or write operation would cross block boundaries",
	ErrDirNotEmpty:             "directory contains files and must be empty",
	ErrFileFull:                "file cannot grow any larger",
	ErrNotEnoughData:           "file doesn't contain enough data to satisfy the request",
	ErrInvalidName:             "file name is too long",
	ErrInvalidType:             "file type is invalid",
	ErrInvalidDataFile:         "the data file that was loaded could not be validated",
	ErrNameTaken:               "another file with that name already exists",
	ErrInvalidStartLoc:         "starting location when reading or writing is invalid",
	ErrInvalidPath:             "path is invalid",
	ErrFileSystemFull:          "the filesystem is full, no more files can be created",
	ErrTooManyOpen:             "too many files are currently open",
	ErrNoMoreBlocks:            "there are no more empty blocks to write to",
	ErrAdjustErrorCodes:        "there are too many error codes, the first one needs reassignment to a more negative value",
	ErrNotEnoughBlocksForFiles: "there aren't enough blocks on the device to hold all the files' metadata",
	ErrBlocksTooSmallForFile:   "the blocks are not large enough to hold a single file control block",
	ErrCantDeleteRoot:          "deleting the root directory is not permitted",
	ErrFileOpen:                "the file is currently open and cannot be deleted",
}

// Sane reports whether the error taxonomy still fits under the budget
// spec.md §4.4 requires every Initialize call to re-check: every code must
// still be a negative number. The codes are consecutive, so it is enough that
// the last one is. If it isn't, the taxonomy above has grown past its span
// and needs renumbering before this build can be trusted.
func Sane() bool {
	return errMax-1 < 0
}

// Error implements the error interface.
func (e FSError) Error() string {
	if msg, ok := messages[e]; ok {
		return msg
	}
	return fmt.Sprintf("unknown cheekyfs error code %d", int(e))
}

// Describe looks up the human-readable message for a raw error code, mirroring
// the reference library's sfs_error_message(). It returns false if the code
// isn't one of the values above.
func Describe(code int) (string, bool) {
	e := FSError(code)
	msg, ok := messages[e]
	return msg, ok
}

// ContextError wraps an FSError with additional context while preserving
// errors.Is compatibility with both the FSError and any wrapped cause.
type ContextError struct {
	code    FSError
	message string
	cause   error
}

func (e *ContextError) Error() string {
	if e.message == "" {
		return e.code.Error()
	}
	return fmt.Sprintf("%s: %s", e.code.Error(), e.message)
}

func (e *ContextError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return e.code
}

// Is reports whether target is the FSError this error was built from, so
// errors.Is(err, errors.ErrFileNotFound) works regardless of whether err is a
// bare FSError or a *ContextError wrapping one.
func (e *ContextError) Is(target error) bool {
	code, ok := target.(FSError)
	return ok && code == e.code
}

// Code returns the underlying closed-taxonomy error code.
func (e *ContextError) Code() FSError {
	return e.code
}

// WithMessage returns a *ContextError carrying a caller-supplied detail
// string alongside the code's canonical message.
func (e FSError) WithMessage(message string) *ContextError {
	return &ContextError{code: e, message: message}
}

// WrapError returns a *ContextError that chains to a lower-level cause (for
// example a block device I/O failure) while still satisfying
// errors.Is(err, e).
func (e FSError) WrapError(cause error) *ContextError {
	return &ContextError{code: e, message: cause.Error(), cause: cause}
}
