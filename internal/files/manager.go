package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// tempSuffix marks files still being written. Discovery ignores them.
const tempSuffix = ".part"

// IsTempName reports whether name belongs to an unfinished write.
func IsTempName(name string) bool {
	return strings.HasSuffix(name, tempSuffix)
}

// Manager writes files into a single directory.
type Manager struct {
	dir    string
	logger *slog.Logger
}

// NewManager creates a new file manager rooted at dir
func NewManager(dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{dir: dir, logger: logger}
}

// Dir returns the managed directory
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns the final location of name inside the managed directory
func (m *Manager) Path(name string) string {
	return filepath.Join(m.dir, filepath.Base(name))
}

// FileExists checks if name exists in the managed directory
func (m *Manager) FileExists(name string) bool {
	_, err := os.Stat(m.Path(name))
	return err == nil
}

// PendingFile is a temporary file that becomes visible under its final
// name only on Commit.
type PendingFile struct {
	*os.File
	final  string
	done   bool
	logger *slog.Logger
}

// Create opens a temporary file next to the final location of name.
func (m *Manager) Create(name string) (*PendingFile, error) {
	final := m.Path(name)
	f, err := os.CreateTemp(m.dir, filepath.Base(name)+".*"+tempSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	return &PendingFile{File: f, final: final, logger: m.logger}, nil
}

// Commit flushes and closes the temp file and renames it over the final
// path, replacing any previous file of that name.
func (p *PendingFile) Commit() error {
	if p.done {
		return nil
	}
	p.done = true

	if err := p.File.Sync(); err != nil {
		p.File.Close()
		os.Remove(p.File.Name())
		return fmt.Errorf("failed to sync %s: %w", p.final, err)
	}
	if err := p.File.Close(); err != nil {
		os.Remove(p.File.Name())
		return fmt.Errorf("failed to close %s: %w", p.final, err)
	}
	if err := os.Rename(p.File.Name(), p.final); err != nil {
		os.Remove(p.File.Name())
		return fmt.Errorf("failed to move %s into place: %w", p.final, err)
	}

	p.logger.Debug("File written", slog.String("path", p.final))
	return nil
}

// Discard closes and removes the temp file. It is a no-op after Commit.
func (p *PendingFile) Discard() {
	if p.done {
		return
	}
	p.done = true
	p.File.Close()
	os.Remove(p.File.Name())
}

// FinalPath is where Commit places the file
func (p *PendingFile) FinalPath() string {
	return p.final
}
