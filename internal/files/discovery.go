package files

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Export is a finished download found on disk
type Export struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery lists export files in a folder
type Discovery struct {
	basePath string
}

// NewDiscovery resolves relative folders against basePath. An empty
// basePath leaves them relative to the working directory.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindByMarker returns the files in dir whose name contains marker, in byte
// order of their names. Folders and unfinished downloads are left out.
func (d *Discovery) FindByMarker(dir, marker string) ([]Export, error) {
	dir = d.resolve(dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var found []Export
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.Contains(name, marker) || IsTempName(name) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed since ReadDir
			continue
		}
		found = append(found, Export{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	slices.SortFunc(found, func(a, b Export) int { return strings.Compare(a.Name, b.Name) })
	return found, nil
}

func (d *Discovery) resolve(dir string) string {
	if d.basePath == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// TotalSize sums the sizes of exports
func TotalSize(exports []Export) int64 {
	var total int64
	for _, e := range exports {
		total += e.Size
	}
	return total
}
