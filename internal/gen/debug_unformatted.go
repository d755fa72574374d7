package gen

import (
	"os"
	"path/filepath"
	"strings"
)

const ignoreConstraint = "//go:build ignore\n\n"

// writeDebugUnformatted writes source that failed to format to a sidecar
// file next to the intended output. Failing here never replaces the
// formatting error.
func writeDebugUnformatted(outDir, filename string, content []byte) error {
	if outDir == "" || filename == "" {
		return nil
	}

	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return err
	}

	// Keep a .go suffix for syntax highlighting; the ignore constraint keeps
	// the broken source out of the package on the next run.
	debugName := strings.TrimSuffix(filename, ".go") + ".unformatted.go"
	content = append([]byte(ignoreConstraint), content...)

	return os.WriteFile(filepath.Join(outDir, debugName), content, filePerm)
}
