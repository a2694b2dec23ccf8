// Package input provides sources for snippet import documents.
package input

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// maxDocumentSize bounds a single import document.
const maxDocumentSize = 10 * 1024 * 1024

// Source yields one raw import document.
type Source interface {
	// Name returns a label for messages (e.g. "stdin" or a file path).
	Name() string

	// Read returns the whole document.
	Read(ctx context.Context) ([]byte, error)
}

// NewSource creates a Source for arg. "-" reads standard input, anything
// else is a file path.
func NewSource(arg string) Source {
	if arg == "-" {
		return NewStdinSource()
	}
	return NewFileSource(arg)
}

// ExpandPaths resolves file arguments. Arguments containing glob
// metacharacters (including **) are expanded; "-" and plain paths are kept.
// Results keep argument order, each glob's matches sorted, without repeats.
func ExpandPaths(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		if arg == "-" || !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, &AdapterError{Source: arg, Message: "invalid pattern", Err: err}
		}
		if len(matches) == 0 {
			return nil, &AdapterError{Source: arg, Message: "no files match pattern", Err: os.ErrNotExist}
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}

	return paths, nil
}

// AdapterError represents a source-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	msg := e.Source + ": " + e.Message
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
