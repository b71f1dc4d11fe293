package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDraft = errors.New("invalid product draft")
	ErrNotLoaded    = errors.New("catalog not loaded")

	ErrNotFound    = errors.New("product not found")
	ErrBadStatus   = errors.New("remote store bad status")
	ErrUnavailable = errors.New("remote store unavailable")
	ErrBadPayload  = errors.New("remote store bad payload")
)

type FieldError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationError lists every draft field that failed local checks.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidDraft, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDraft }

// Has reports whether field is among the failed fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// RemoteError is a failed exchange with the remote store. Kind is one of
// ErrNotFound, ErrBadStatus, ErrUnavailable or ErrBadPayload.
type RemoteError struct {
	Op     string
	Status int
	Kind   error
	Cause  error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status=%d", e.Status)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// IsNotFound reports whether err says the product does not exist remotely.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusOf returns the remote HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}
