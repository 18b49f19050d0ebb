// Package fault defines the error kinds shared by the training and inference
// pipeline. Callers classify failures with errors.Is and errors.As.
package fault

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyInput is returned when a document to score has no text.
	ErrEmptyInput = errors.New("input document is empty")

	// ErrNotFitted is returned when a vectorizer or classifier is used before Fit.
	ErrNotFitted = errors.New("model has not been fitted")
)

// ConfigError reports an unrecognized vectorizer or classifier selection.
type ConfigError struct {
	Field string
	Value string
}

// NewConfigError returns a ConfigError for the given selection field.
func NewConfigError(field, value string) *ConfigError {
	return &ConfigError{Field: field, Value: value}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("unrecognized %s %q", e.Field, e.Value)
}

// TrainingError reports a failed fit. Stage names the part of the pipeline
// that failed ("vectorizer" or "classifier").
type TrainingError struct {
	Stage string
	Err   error
}

// NewTrainingError wraps err as a TrainingError unless it already is one.
func NewTrainingError(stage string, err error) error {
	var te *TrainingError
	if errors.As(err, &te) {
		return err
	}
	return &TrainingError{Stage: stage, Err: err}
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training %s: %v", e.Stage, e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

// IsConfig reports whether err is, or wraps, a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsTraining reports whether err is, or wraps, a TrainingError.
func IsTraining(err error) bool {
	var te *TrainingError
	return errors.As(err, &te)
}
