// Package errors defines the typed failures raised while exporting tenders.
// Callers usually import it as apperrors to keep the standard library
// package available; Is, As and Join are re-exported for convenience.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Re-exported from the standard library.
var (
	Is   = stderrors.Is
	As   = stderrors.As
	Join = stderrors.Join
)

// Sentinel causes
var (
	ErrEmptyBody        = stderrors.New("empty response body")
	ErrUnexpectedFile   = stderrors.New("unrecognized spreadsheet format")
	ErrNoHeaderRow      = stderrors.New("no header row after banner rows")
	ErrNoFilesToCombine = stderrors.New("no downloaded files to combine")
)

// FetchError is one failed download. It never aborts the other downloads.
type FetchError struct {
	URL        string
	Filename   string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.StatusCode != http.StatusOK:
		return fmt.Sprintf("download %s failed: HTTP %d %s", e.Filename, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Cause != nil:
		return fmt.Sprintf("download %s failed: %v", e.Filename, e.Cause)
	default:
		return fmt.Sprintf("download %s failed", e.Filename)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Type classifies the failure for metrics and summaries.
func (e *FetchError) Type() ErrorType {
	return ErrTypeNetwork
}

// NewFetchError creates a download failure
func NewFetchError(url, filename string, statusCode int, cause error) *FetchError {
	return &FetchError{URL: url, Filename: filename, StatusCode: statusCode, Cause: cause}
}

// ReadError is a downloaded file that could not be parsed as a table.
type ReadError struct {
	Path  string
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("cannot read spreadsheet %s: %v", e.Path, e.Cause)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}

// NewReadError creates a spreadsheet read failure
func NewReadError(path string, cause error) *ReadError {
	return &ReadError{Path: path, Cause: cause}
}
