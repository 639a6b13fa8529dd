package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller mistakes (400).
	ErrInvalidInput = errors.New("invalid input")
	// ErrProductNotFound is returned when an order references an unknown product.
	ErrProductNotFound = fmt.Errorf("%w: one or more products not found", ErrInvalidInput)
	// ErrUnavailable marks store connectivity failures (503).
	ErrUnavailable = errors.New("store unavailable")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
