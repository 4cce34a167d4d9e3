package domain

import (
	"errors"
	"fmt"
)

// Fetch failures from the external catalog form a closed set. The search
// orchestrator branches on these instead of catching broad error classes.
var (
	ErrSourceTimeout     = errors.New("catalog timeout")
	ErrSourceUnreachable = errors.New("catalog unreachable")
	ErrMalformedData     = errors.New("malformed catalog data")

	ErrGuideNotFound = errors.New("guide not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
