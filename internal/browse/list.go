// Package browse enumerates image folders and tracks the position of each
// side of the viewer within its folder.
package browse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"twinview/internal/decode"
)

var ErrNotDirectory = errors.New("not a directory")

// ListImages returns the full paths of the supported images directly inside
// dir, sorted by path.
func ListImages(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("read folder %s: %w", dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !decode.IsSupported(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
