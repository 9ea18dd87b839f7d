package pipeline

import (
	"errors"
	"fmt"
)

// PluginName tags every error this module emits.
const PluginName = "lintpipe"

// Error kinds. Match them with errors.Is.
var (
	// ErrConfiguration: invalid setup. Returned by constructors, and emitted
	// when per-file config discovery fails.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedInput: the file cannot be processed (streamed contents).
	ErrUnsupportedInput = errors.New("unsupported input")

	// ErrLintFailed: a fail reporter rejected the file.
	ErrLintFailed = errors.New("lint failed")
)

// PluginError is the structured error emitted on a pipeline's error channel
// and returned from constructors.
type PluginError struct {
	Plugin  string
	Message string
	Kind    error // one of the Err* kinds above
	Err     error // underlying cause, may be nil
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("%s: %s", e.Plugin, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *PluginError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewPluginError builds a PluginError of the given kind.
func NewPluginError(kind error, format string, args ...any) *PluginError {
	return &PluginError{
		Plugin:  PluginName,
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
	}
}

// WrapPluginError builds a PluginError whose message includes cause.
func WrapPluginError(kind error, cause error, format string, args ...any) *PluginError {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &PluginError{
		Plugin:  PluginName,
		Message: msg,
		Kind:    kind,
		Err:     cause,
	}
}
