package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"errgen/internal/common"
	"errgen/internal/plan"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Status describes a generated file relative to what is on disk.
type Status int

const (
	StatusUpToDate Status = iota + 1 // identical content on disk
	StatusStale                      // errgen output with different content
	StatusMissing                    // no file on disk
	StatusForeign                    // a file errgen did not write
	StatusOrphaned                   // errgen output of a package without error types
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up to date"
	case StatusStale:
		return "stale"
	case StatusMissing:
		return "missing"
	case StatusForeign:
		return "not generated by errgen"
	case StatusOrphaned:
		return "orphaned"
	default:
		return common.UnknownStr
	}
}

// ConfirmFunc asks whether a file errgen did not write may be overwritten.
type ConfirmFunc func(path string) (bool, error)

// Compare reports the status of a generated file against the file on disk.
func Compare(file GeneratedFile) (Status, error) {
	existing, err := os.ReadFile(file.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return StatusMissing, nil
	}

	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", file.Path(), err)
	}

	switch {
	case bytes.Equal(existing, file.Content):
		return StatusUpToDate, nil
	case IsGenerated(existing):
		return StatusStale, nil
	default:
		return StatusForeign, nil
	}
}

// IsGenerated reports whether content starts with the errgen header.
func IsGenerated(content []byte) bool {
	return bytes.HasPrefix(content, []byte(Header))
}

// WriteFiles writes all generated files into their package directories and
// returns the paths written. Up-to-date files are left alone. A file errgen
// did not write is overwritten only when confirm allows it; a nil confirm
// refuses.
func WriteFiles(files []GeneratedFile, confirm ConfirmFunc) ([]string, error) {
	var written []string

	for _, file := range files {
		status, err := Compare(file)
		if err != nil {
			return written, err
		}

		switch status {
		case StatusUpToDate:
			continue
		case StatusForeign:
			ok := false
			if confirm != nil {
				if ok, err = confirm(file.Path()); err != nil {
					return written, fmt.Errorf("confirming overwrite of %s: %w", file.Path(), err)
				}
			}

			if !ok {
				return written, fmt.Errorf("refusing to overwrite %s: not generated by errgen", file.Path())
			}
		}

		if err := os.MkdirAll(file.Dir, dirPerm); err != nil {
			return written, fmt.Errorf("creating output directory: %w", err)
		}

		if err := os.WriteFile(file.Path(), file.Content, filePerm); err != nil {
			return written, fmt.Errorf("writing file %s: %w", file.Filename, err)
		}

		written = append(written, file.Path())
	}

	return written, nil
}

// Orphans returns the errgen output files of packages that no longer declare
// error types. Files without the errgen header are never returned.
func (g *Generator) Orphans(p *plan.Plan) ([]string, error) {
	var paths []string

	for i := range p.Packages {
		rp := &p.Packages[i]
		if len(rp.Subjects) > 0 || rp.Package.Dir == "" {
			continue
		}

		path := filepath.Join(rp.Package.Dir, g.config.OutputFile)

		content, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		if IsGenerated(content) {
			g.logger.Debug("orphaned output", "package", rp.Package.Path, "path", path)
			paths = append(paths, path)
		}
	}

	return paths, nil
}

// RemoveFiles deletes the given files and returns the paths removed.
func RemoveFiles(paths []string) ([]string, error) {
	var removed []string

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("removing %s: %w", path, err)
		}

		removed = append(removed, path)
	}

	return removed, nil
}
