package core

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned when an ingestion is requested with an empty file list.
// The orchestrator stays idle so the caller can re-show the upload prompt.
var ErrNoFiles = errors.New("no files provided")

// ErrCancelled is returned when an ingestion is cancelled at a file boundary.
var ErrCancelled = errors.New("ingestion cancelled")

// ErrNotIdle is returned when Ingest is called on an orchestrator that has
// already run. Call Reset to start over.
var ErrNotIdle = errors.New("ingestion already started")

// Edit errors.
var (
	ErrRowOutOfRange = errors.New("row index out of range")
	ErrUnknownColumn = errors.New("unknown column key")
)

// FileReadError reports an I/O or decode failure for one file.
// It aborts the whole ingestion.
type FileReadError struct {
	FileName string
	Err      error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read file %q: %v", e.FileName, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// EmptySheetError reports a decoded sheet without an addressable range.
// It aborts the whole ingestion, like FileReadError.
type EmptySheetError struct {
	FileName string
}

func (e *EmptySheetError) Error() string {
	if e.FileName == "" {
		return "empty sheet: no addressable range"
	}
	return fmt.Sprintf("empty sheet in %q: no addressable range", e.FileName)
}

// IsStructural reports whether err is one of the failures that abort an
// ingestion (no files, unreadable file, empty sheet).
func IsStructural(err error) bool {
	if errors.Is(err, ErrNoFiles) {
		return true
	}
	var fre *FileReadError
	if errors.As(err, &fre) {
		return true
	}
	var ese *EmptySheetError
	return errors.As(err, &ese)
}

// FailingFile returns the name of the file an ingestion error refers to, if any.
func FailingFile(err error) string {
	var fre *FileReadError
	if errors.As(err, &fre) {
		return fre.FileName
	}
	var ese *EmptySheetError
	if errors.As(err, &ese) {
		return ese.FileName
	}
	return ""
}
