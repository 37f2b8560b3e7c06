package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrLocationMismatch is reported when an accessor receives a symbol from the wrong location.
	ErrLocationMismatch = errors.New("symbol location mismatch")
	// ErrTypeMismatch is reported when a constant accessor receives a symbol of the wrong type.
	ErrTypeMismatch = errors.New("symbol type mismatch")
	// ErrMissingSideData is reported when a symbol has no record in the side table it should have one in.
	ErrMissingSideData = errors.New("symbol not registered")
	// ErrUnsupportedSwizzle is reported for swizzle compositions outside the known table.
	ErrUnsupportedSwizzle = errors.New("unsupported swizzle composition")
	// ErrNotMask is reported when a swizzle cannot be used as a write mask.
	ErrNotMask = errors.New("swizzle is not a write mask")
)

// ContractError describes a violated precondition of the builder API.
type ContractError struct {
	Op     string
	Err    error
	Detail string
}

func (e *ContractError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("shader.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("shader.%s: %v: %s", e.Op, e.Err, e.Detail)
}

func (e *ContractError) Unwrap() error { return e.Err }

// IsContractViolation reports whether err carries a *ContractError.
func IsContractViolation(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}

// violation builds a ContractError, panicking instead when contracts are fatal.
func violation(op string, err error, format string, args ...any) error {
	ce := &ContractError{Op: op, Err: err}
	if format != "" {
		ce.Detail = fmt.Sprintf(format, args...)
	}
	if fatalContracts {
		panic(ce)
	}
	return ce
}
