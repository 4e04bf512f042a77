package parser

import (
	"fmt"
	"strings"
)

// Issue is one problem found while parsing or validating a pipeline.
type Issue struct {
	Message string `json:"message" yaml:"message"`
	Off     int    `json:"offset" yaml:"offset"`
	Line    int    `json:"line" yaml:"line"`
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s", i.Line, i.Message)
}

// Issues collects every error and warning from one parse so a caller
// validating a pipeline sees all problems at once instead of the first.
type Issues struct {
	Errors   []Issue `json:"errors" yaml:"errors"`
	Warnings []Issue `json:"warnings" yaml:"warnings"`
}

func (is *Issues) errorf(off, line int, format string, args ...any) {
	is.Errors = append(is.Errors, Issue{Message: fmt.Sprintf(format, args...), Off: off, Line: line})
}

func (is *Issues) warnf(off, line int, format string, args ...any) {
	is.Warnings = append(is.Warnings, Issue{Message: fmt.Sprintf(format, args...), Off: off, Line: line})
}

// HasErrors reports whether any hard error was recorded.
func (is *Issues) HasErrors() bool {
	return len(is.Errors) > 0
}

// Err condenses the recorded errors into a single error, or nil.
func (is *Issues) Err() error {
	if !is.HasErrors() {
		return nil
	}
	msgs := make([]string, len(is.Errors))
	for i, e := range is.Errors {
		msgs[i] = e.String()
	}
	return fmt.Errorf("parse failed: %s", strings.Join(msgs, "; "))
}
