package corpus

import (
	"fmt"

	"go.uber.org/multierr"
)

// LoadError reports a corpus source that is missing or malformed. No
// prediction is possible without a corpus.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if n := len(multierr.Errors(e.Err)); n > 1 {
		return fmt.Sprintf("loading corpus %s: %d errors: %v", e.Source, n, e.Err)
	}
	return fmt.Sprintf("loading corpus %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// RowErrors returns the individual row errors collected while loading.
func (e *LoadError) RowErrors() []*RowError {
	var rows []*RowError
	for _, err := range multierr.Errors(e.Err) {
		if re, ok := err.(*RowError); ok {
			rows = append(rows, re)
		}
	}
	return rows
}

// RowError describes one unparseable row. Line is the 1-based line in the
// source where the record starts, or the document position for non-file sources.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}
