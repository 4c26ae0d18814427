// Package validation checks the folders a run reads from and writes to
// before any work is done in them.
package validation

import (
	"fmt"
	"log/slog"
	"os"

	apperrors "etenderexport/internal/errors"
	"etenderexport/internal/files"
)

// FileValidator checks folder preconditions for the pipeline steps
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// RequireDirectory fails with a NOT_FOUND error when dir is missing and a
// VALIDATION error when it is not a directory.
func (v *FileValidator) RequireDirectory(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		v.logger.Error("Folder does not exist", slog.String("directory", dir))
		return apperrors.NewNotFoundError("folder " + dir)
	case err != nil:
		return apperrors.FileSystemError("stat "+dir, err)
	case !info.IsDir():
		v.logger.Error("Path is not a folder", slog.String("path", dir))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is not a folder", dir))
	}
	return nil
}

// RequireWritable creates dir if needed and proves a file can be created in
// it.
func (v *FileValidator) RequireWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create folder",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.FileSystemError("create "+dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Folder is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.FileSystemError("write test in "+dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// CountExports counts the finished files in dir whose name contains marker,
// i.e. the files a combine of dir would read.
func (v *FileValidator) CountExports(dir, marker string) (int, error) {
	if err := v.RequireDirectory(dir); err != nil {
		return 0, err
	}
	found, err := files.NewDiscovery("").FindByMarker(dir, marker)
	if err != nil {
		return 0, apperrors.FileSystemError("list "+dir, err)
	}
	return len(found), nil
}
