package generation

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure so the orchestrator and the HTTP
// layer can map it without string matching.
type Kind string

const (
	KindInput     Kind = "input"
	KindInduction Kind = "induction"
	KindProvider  Kind = "provider"
	KindPlanning  Kind = "planning"
	KindSlot      Kind = "slot"
	KindAssembly  Kind = "assembly"
)

type PipelineError struct {
	Kind Kind
	Err  error
}

func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func NewError(kind Kind, err error) *PipelineError {
	return &PipelineError{Kind: kind, Err: err}
}

func Errorf(kind Kind, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the kind of a pipeline error, or "" for plain errors.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
