package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Service wraps exactly one of these,
// except embedding failures and cancellation.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDecode       = errors.New("decode failure")
	ErrEmptyCorpus  = errors.New("empty corpus")
	ErrParse        = errors.New("parse failure")
)

// StageError names the file and pipeline stage where a failure happened.
type StageError struct {
	Kind  error
	File  string // Empty for request-level failures
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	msg := e.Kind.Error()
	if e.File != "" {
		msg += ": " + e.File
	}
	if e.Stage != "" {
		msg += " (" + e.Stage + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalidInput(file, stage, format string, args ...any) error {
	return &StageError{Kind: ErrInvalidInput, File: file, Stage: stage, Err: fmt.Errorf(format, args...)}
}
