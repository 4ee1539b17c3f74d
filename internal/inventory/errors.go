package inventory

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrLoad     = errors.New("failed to load toys")
	ErrSave     = errors.New("failed to save toy")
	ErrDelete   = errors.New("failed to delete toy")
	ErrNotFound = errors.New("toy not in inventory")
	ErrNoDialog = errors.New("no dialog is open")
)

// ValidationError lists field-level form problems keyed by form field name.
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
	return "invalid toy form: " + strings.Join(parts, "; ")
}
