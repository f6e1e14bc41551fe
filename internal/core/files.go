package core

// files.go defines the file handles consumed by the orchestrator and the
// upload preconditions checked before ingestion starts.
//
// Preconditions (count, size, type) are the caller's responsibility: the
// web and CLI layers call CheckFiles before handing files to Ingest.

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// File is a named source of raw bytes.
type File interface {
	Name() string
	ReadAll(ctx context.Context) ([]byte, error)
}

// MemFile is a File already held in memory (e.g. a multipart upload).
type MemFile struct {
	FileName string
	Data     []byte
}

// Name implements File.
func (f MemFile) Name() string { return f.FileName }

// ReadAll implements File.
func (f MemFile) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.Data, nil
}

// DiskFile reads a file from the local filesystem.
type DiskFile struct {
	Path string
}

// Name implements File.
func (f DiskFile) Name() string { return filepath.Base(f.Path) }

// ReadAll implements File.
func (f DiskFile) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(f.Path)
}

// Upload precondition errors.
var (
	ErrTooManyFiles    = errors.New("too many files")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// Default upload limits.
const (
	DefaultMaxFiles    = 5
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB
)

// AcceptedExtensions lists the file extensions the pipeline can decode.
var AcceptedExtensions = []string{".csv", ".tsv", ".xlsx", ".xlsm"}

// AcceptedMIMETypes lists content types browsers send for accepted files.
// An empty or generic type is tolerated; the extension decides.
var AcceptedMIMETypes = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-excel.sheet.macroenabled.12",
	"application/vnd.ms-excel", // Windows reports CSV files with this type
	"text/csv",
	"text/tab-separated-values",
	"text/plain",
	"application/octet-stream",
}

// Limits bounds an upload.
type Limits struct {
	MaxFiles    int
	MaxFileSize int64
}

// DefaultLimits returns the upload wizard's limits.
func DefaultLimits() Limits {
	return Limits{MaxFiles: DefaultMaxFiles, MaxFileSize: DefaultMaxFileSize}
}

// FileInfo describes a candidate upload before its bytes are read.
type FileInfo struct {
	Name string
	Size int64
	MIME string
}

// CheckFiles validates an upload's file count, sizes and types.
// An empty list is not an error here; Ingest reports ErrNoFiles.
func CheckFiles(files []FileInfo, limits Limits) error {
	if limits.MaxFiles > 0 && len(files) > limits.MaxFiles {
		return fmt.Errorf("%w: %d files, at most %d allowed", ErrTooManyFiles, len(files), limits.MaxFiles)
	}
	for _, f := range files {
		if err := checkFile(f, limits); err != nil {
			return err
		}
	}
	return nil
}

func checkFile(f FileInfo, limits Limits) error {
	if limits.MaxFileSize > 0 && f.Size > limits.MaxFileSize {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, f.Name, f.Size, limits.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	if !contains(AcceptedExtensions, ext) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, f.Name)
	}

	if f.MIME == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(f.MIME)
	if err != nil || !contains(AcceptedMIMETypes, strings.ToLower(mediaType)) {
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedFile, f.Name, f.MIME)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
