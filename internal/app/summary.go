package app

import (
	"fmt"
	"io"
	"sort"

	"etenderexport/internal/operations"
)

// Summary condenses a finished run for the console
type Summary struct {
	RunID        string
	TraceID      string
	Planned      int
	Downloaded   int
	Failed       int
	Bytes        int64
	FailedFiles  []string
	Files        int
	Rows         int
	CombinedPath string
	Status       operations.RunStatus
}

// Summarize extracts the console summary from a run
func Summarize(state *operations.RunState) Summary {
	s := Summary{
		RunID:        state.ID,
		TraceID:      state.TraceID,
		Planned:      len(state.Tasks),
		CombinedPath: state.CombinedPath,
		Status:       state.GetStatus(),
	}
	if r := state.Downloads; r != nil {
		s.Downloaded = r.Succeeded
		s.Failed = r.Failed
		s.Bytes = r.Bytes
		for _, res := range r.Failures() {
			s.FailedFiles = append(s.FailedFiles, fmt.Sprintf("%s (%s)", res.Task.Filename, res.Status))
		}
	}
	if t := state.Table; t != nil {
		s.Files = len(t.Sources)
		s.Rows = len(t.Rows)
	}
	return s
}

// PrintSummary writes the summary. Sections for steps that did not run are
// left out.
func PrintSummary(w io.Writer, state *operations.RunState) {
	s := Summarize(state)

	if s.Planned > 0 {
		fmt.Fprintf(w, "Downloads: %d of %d succeeded (%d bytes)\n", s.Downloaded, s.Planned, s.Bytes)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "Failed downloads (%d):\n", s.Failed)
		failed := append([]string(nil), s.FailedFiles...)
		sort.Strings(failed)
		for _, f := range failed {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if s.CombinedPath != "" {
		fmt.Fprintf(w, "Combined %d files, %d rows into %s\n", s.Files, s.Rows, s.CombinedPath)
	}
	if state.Err != nil {
		fmt.Fprintf(w, "Run %s: %v\n", s.Status, state.Err)
	}
	if s.TraceID != "" {
		fmt.Fprintf(w, "Run ID %s, trace %s\n", s.RunID, s.TraceID)
	}
	fmt.Fprintln(w)
}
