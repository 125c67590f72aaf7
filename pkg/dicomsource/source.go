// Package dicomsource discovers DICOM files under a directory and decodes
// them into slice records for the series loader.
package dicomsource

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"mprview/internal/logging"
	"mprview/internal/models"
)

// DefaultPattern matches DICOM files by extension
const DefaultPattern = "*.dcm"

// DirSource reads every file under a directory tree whose name matches
// Pattern (case-insensitive). Files are returned sorted by path.
type DirSource struct {
	// Pattern is a filepath.Match pattern applied to file names
	Pattern string

	// Workers bounds how many files are decoded at once
	Workers int
}

// New creates a DirSource; empty pattern and non-positive workers use defaults
func New(pattern string, workers int) *DirSource {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &DirSource{Pattern: pattern, Workers: workers}
}

// Slices decodes all matching files under dir. A file that cannot be
// decoded yields a record without pixels rather than an error.
func (s *DirSource) Slices(ctx context.Context, dir string) ([]models.SliceRecord, error) {
	files, err := s.discover(dir)
	if err != nil {
		return nil, err
	}
	logging.Debugf("Found %d candidate files under %s", len(files), dir)

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	records := make([]models.SliceRecord, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records[i] = ReadFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "decoding series")
	}
	return records, nil
}

// discover returns the sorted paths of matching regular files under dir
func (s *DirSource) discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, "opening series directory")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", dir)
	}

	pattern := strings.ToLower(s.Pattern)
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.Wrapf(err, "invalid file pattern %q", s.Pattern)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, strings.ToLower(d.Name())); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", dir)
	}

	sort.Strings(files)
	return files, nil
}
