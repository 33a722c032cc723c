package vitis

import (
	"errors"
	"fmt"
)

// Error kinds. All of them describe a static misconfiguration and are never
// retried.
var (
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidSource    = errors.New("invalid source")
	ErrToolNotFound     = errors.New("tool not found")
	ErrNameCollision    = errors.New("name collision")
)

// GenerationError reports why a request produced no tasks and the last
// phase its pipeline reached.
type GenerationError struct {
	Kind    error
	Request string
	Phase   Phase
	Err     error
}

func (e *GenerationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Request == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Request, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func missingf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMissingParameter}, args...)...)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameter}, args...)...)
}

func collisionf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNameCollision}, args...)...)
}

// failed wraps err with the request name and the phase the pipeline had
// reached when it stopped.
func failed(err error, request string, phase Phase) error {
	return &GenerationError{Kind: classify(err), Request: request, Phase: phase, Err: err}
}

func classify(err error) error {
	for _, kind := range []error{ErrMissingParameter, ErrInvalidParameter, ErrInvalidSource, ErrToolNotFound, ErrNameCollision} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInvalidParameter
}
