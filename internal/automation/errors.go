package automation

import (
	"errors"
	"fmt"
)

// Error classes for automation calls.
var (
	// ErrScriptUnavailable means the script could not be set up at all
	// (unknown script, no osascript). Fatal for a context until reconfigured.
	ErrScriptUnavailable = errors.New("script unavailable")

	// ErrScriptExecution means a call failed or timed out. Transient; the
	// next poll retries.
	ErrScriptExecution = errors.New("script execution failed")

	// ErrMalformedResult means the script ran but its output made no sense.
	ErrMalformedResult = errors.New("malformed script result")
)

// ScriptError carries the script name, the error class and the cause.
type ScriptError struct {
	Script string
	Kind   error
	Err    error
}

// Error implements error.
func (e *ScriptError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Script, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Script, e.Kind, e.Err)
}

// Unwrap exposes both the class and the cause to errors.Is / errors.As.
func (e *ScriptError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unavailable(script string, err error) error {
	return &ScriptError{Script: script, Kind: ErrScriptUnavailable, Err: err}
}

func execution(script string, err error) error {
	return &ScriptError{Script: script, Kind: ErrScriptExecution, Err: err}
}

// Malformed wraps a parse failure of script output.
func Malformed(script string, err error) error {
	return &ScriptError{Script: script, Kind: ErrMalformedResult, Err: err}
}

// IsUnavailable reports whether err is a setup failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrScriptUnavailable)
}

// IsTransient reports whether err is worth retrying on the next poll.
func IsTransient(err error) bool {
	return errors.Is(err, ErrScriptExecution) || errors.Is(err, ErrMalformedResult)
}
