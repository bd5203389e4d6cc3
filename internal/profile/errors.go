package profile

import (
	"fmt"
	"sort"
	"strings"
)

// FieldError describes one rejected profile field.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError is returned for a malformed or incomplete student profile.
// It is local to the request and never retried.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid student profile"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "invalid student profile: " + strings.Join(parts, "; ")
}

// FieldNames returns the offending field names in sorted order.
func (e *ValidationError) FieldNames() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Field)
	}
	sort.Strings(out)
	return out
}

func (e *ValidationError) add(field, reason string) {
	for _, f := range e.Fields {
		if f.Field == field {
			return
		}
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// RejectedProfile is one profile of a batch that failed to decode or validate.
type RejectedProfile struct {
	// Index is the 1-based position of the profile in the batch.
	Index     int
	StudentID string
	Err       error
}

// BatchError lists every rejected profile of a batch. The valid profiles of
// the same batch are returned alongside it.
type BatchError struct {
	Rejected []RejectedProfile
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Rejected))
	for _, r := range e.Rejected {
		id := ""
		if r.StudentID != "" {
			id = " (" + r.StudentID + ")"
		}
		parts = append(parts, fmt.Sprintf("profile #%d%s: %v", r.Index, id, r.Err))
	}
	return fmt.Sprintf("%d invalid profile(s): %s", len(e.Rejected), strings.Join(parts, "; "))
}

// Unwrap exposes the per-profile errors to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	out := make([]error, len(e.Rejected))
	for i, r := range e.Rejected {
		out[i] = r.Err
	}
	return out
}
