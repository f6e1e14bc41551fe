package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/JonMunkholm/sheetcheck/internal/core"
)

// expandPaths replaces each directory argument with the accepted files it
// contains, in name order. Subdirectories and other files are skipped.
// Plain file arguments are kept as given so unsupported types still fail
// the upload check.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", arg, err)
		}
		found := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if !slices.Contains(core.AcceptedExtensions, ext) {
				continue
			}
			paths = append(paths, filepath.Join(arg, entry.Name()))
			found++
		}
		if found == 0 {
			return nil, fmt.Errorf("%w: no %s files in %s", core.ErrNoFiles, strings.Join(core.AcceptedExtensions, "/"), arg)
		}
	}
	return paths, nil
}

// diskFiles runs the upload precondition check on paths and wraps them as
// files for the orchestrator.
func diskFiles(paths []string, limits core.Limits) ([]core.File, error) {
	infos := make([]core.FileInfo, len(paths))
	files := make([]core.File, len(paths))
	for i, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, &core.FileReadError{FileName: filepath.Base(p), Err: err}
		}
		infos[i] = core.FileInfo{Name: filepath.Base(p), Size: st.Size()}
		files[i] = core.DiskFile{Path: p}
	}
	if err := core.CheckFiles(infos, limits); err != nil {
		return nil, err
	}
	return files, nil
}
