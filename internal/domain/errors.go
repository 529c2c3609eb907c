package domain

import (
	"fmt"
	"strings"
)

// InvalidInputError reports malformed or missing fields in trade or
// transaction records handed to the feature aggregator.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// SchemaMismatchError reports feature columns at inference time that do not
// match the schema the model was fitted on.
type SchemaMismatchError struct {
	Want []string
	Got  []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature schema mismatch: model was fitted on [%s], got [%s]",
		strings.Join(e.Want, ", "), strings.Join(e.Got, ", "))
}

// ModelNotFittedError reports a predict call against a model that has not
// been trained or loaded.
type ModelNotFittedError struct{}

func (e *ModelNotFittedError) Error() string {
	return "model is not fitted: call Train or Load first"
}

// ModelLoadError reports a corrupt or incompatible persisted model artifact.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model artifact %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}
