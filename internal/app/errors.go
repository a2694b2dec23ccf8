package app

import (
	"errors"
	"fmt"
)

// Kind classifies a failed action for reporting.
type Kind int

const (
	// KindValidation is bad user input, rejected before any mutation.
	KindValidation Kind = iota
	// KindPermission is denied access to the clipboard.
	KindPermission
	// KindFormat is an unusable import document.
	KindFormat
	// KindEnvironment is an empty or unreadable clipboard or a file error.
	KindEnvironment
	// KindStorage is a failed read or write of the persistent store.
	KindStorage
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindFormat:
		return "format"
	case KindEnvironment:
		return "environment"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is returned by every Session action that fails. The action has
// applied nothing when it returns an Error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Session errors.
var (
	ErrNotFound      = errors.New("snippet not found")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrInvalidIcon   = errors.New("invalid icon")
	ErrEmptyType     = errors.New("category cannot be empty")
	ErrNoSources     = errors.New("no import sources")
)

// NewError wraps err as a failed op of the given kind.
func NewError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err if it is, or wraps, an *Error.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
