package web

// handlers_common.go holds helpers shared by the upload handlers.

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/sheetcheck/internal/core"
)

// multipartOverhead allows for form boundaries and small fields on top of
// the file payload.
const multipartOverhead = 1 << 20

// maxMemory is how much of a multipart form is held in memory; larger
// parts spill to temporary files.
const maxMemory = 32 << 20

// errInvalidForm reports a multipart body that could not be parsed.
var errInvalidForm = errors.New("invalid upload form")

// uploadFields are the form fields files are read from, in order.
var uploadFields = []string{"files", "file"}

// readUploadFiles parses a multipart upload, checks the upload limits
// before reading any file, and returns the files in form order.
func (s *Server) readUploadFiles(w http.ResponseWriter, r *http.Request) ([]core.File, error) {
	maxBody := s.limits.MaxFileSize*int64(max(s.limits.MaxFiles, 1)) + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", core.ErrFileTooLarge, mbe.Limit)
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, core.ErrNoFiles
		}
		return nil, fmt.Errorf("%w: %w", errInvalidForm, err)
	}

	var headers []*multipart.FileHeader
	for _, field := range uploadFields {
		headers = append(headers, r.MultipartForm.File[field]...)
	}

	infos := make([]core.FileInfo, len(headers))
	for i, h := range headers {
		infos[i] = core.FileInfo{
			Name: h.Filename,
			Size: h.Size,
			MIME: h.Header.Get("Content-Type"),
		}
	}
	if err := core.CheckFiles(infos, s.limits); err != nil {
		return nil, err
	}

	files := make([]core.File, 0, len(headers))
	for _, h := range headers {
		data, err := readPart(h)
		if err != nil {
			return nil, &core.FileReadError{FileName: h.Filename, Err: err}
		}
		files = append(files, core.MemFile{FileName: h.Filename, Data: data})
	}
	return files, nil
}

func readPart(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
