package engine

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/xclgen/internal/address"
)

// ErrCycle is returned when declarations reference each other in a loop.
var ErrCycle = errors.New("dependency cycle")

// DeclarationError ties a failure to the declaration that caused it.
type DeclarationError struct {
	Address address.Address
	Range   hcl.Range
	Err     error
}

func (e *DeclarationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Range.Filename == "" {
		return fmt.Sprintf("%s: %v", e.Address, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Address, e.Range, e.Err)
}

func (e *DeclarationError) Unwrap() error { return e.Err }
