package subscriberlist

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrListNotFound    = errors.New("list not found")
	ErrDuplicateName   = errors.New("a list with this name already exists")
	ErrDuplicateMember = errors.New("user is already a member of this list")
	ErrQuotaExceeded   = errors.New("custom list limit reached")
	ErrNoNewMembers    = errors.New("all users are already members of this list")
	ErrEmptyList       = errors.New("list has no members")
	ErrNotCustomList   = errors.New("members can only be managed on custom lists")
	ErrFiltersRequired = errors.New("smart lists require filters")
	ErrUserNotFound    = errors.New("user not found")
	ErrRateLimited     = errors.New("bulk send limit reached")
)

// ValidationError carries per-field messages keyed by JSON path
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
