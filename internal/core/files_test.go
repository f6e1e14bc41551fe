package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckFiles(t *testing.T) {
	limits := Limits{MaxFiles: 2, MaxFileSize: 100}

	tests := []struct {
		name    string
		files   []FileInfo
		wantErr error
	}{
		{"none", nil, nil},
		{"csv", []FileInfo{{Name: "a.csv", Size: 10, MIME: "text/csv"}}, nil},
		{"xlsx upper case", []FileInfo{{Name: "A.XLSX", Size: 10}}, nil},
		{"csv reported as excel", []FileInfo{{Name: "a.csv", Size: 10, MIME: "application/vnd.ms-excel"}}, nil},
		{"mime with params", []FileInfo{{Name: "a.csv", Size: 10, MIME: "text/csv; charset=utf-8"}}, nil},
		{"too many", []FileInfo{{Name: "a.csv"}, {Name: "b.csv"}, {Name: "c.csv"}}, ErrTooManyFiles},
		{"too large", []FileInfo{{Name: "a.csv", Size: 101}}, ErrFileTooLarge},
		{"bad extension", []FileInfo{{Name: "a.pdf", Size: 1}}, ErrUnsupportedFile},
		{"no extension", []FileInfo{{Name: "README", Size: 1}}, ErrUnsupportedFile},
		{"bad mime", []FileInfo{{Name: "a.csv", Size: 1, MIME: "image/png"}}, ErrUnsupportedFile},
		{"malformed mime", []FileInfo{{Name: "a.csv", Size: 1, MIME: "text/;;"}}, ErrUnsupportedFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFiles(tt.files, limits)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckFiles_ZeroLimitsAreUnbounded(t *testing.T) {
	files := make([]FileInfo, 50)
	for i := range files {
		files[i] = FileInfo{Name: "a.csv", Size: 1 << 30}
	}
	if err := CheckFiles(files, Limits{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if d := DefaultLimits(); d.MaxFiles != DefaultMaxFiles || d.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("DefaultLimits = %+v", d)
	}
}

func TestDiskFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("A\n1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	f := DiskFile{Path: path}
	if f.Name() != "data.csv" {
		t.Errorf("Name = %q", f.Name())
	}
	data, err := f.ReadAll(context.Background())
	if err != nil || string(data) != "A\n1\n" {
		t.Errorf("ReadAll = %q, %v", data, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.ReadAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled ReadAll err = %v", err)
	}
}
