package audience

import (
	"errors"
	"fmt"
)

var (
	// ErrResolution matches any *ResolutionError via errors.Is
	ErrResolution = errors.New("audience resolution failed")

	ErrUnknownFilter = errors.New("unknown filter value")
)

// ResolutionError reports which predicate category failed to evaluate
type ResolutionError struct {
	Category string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s filter: %v", e.Category, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }
