package input

import (
	"context"
	"fmt"
	"io"
	"os"
)

// StdinSource reads an import document from standard input.
type StdinSource struct {
	reader io.Reader
}

// NewStdinSource creates a new StdinSource reading from os.Stdin.
func NewStdinSource() *StdinSource {
	return &StdinSource{reader: os.Stdin}
}

// NewStdinSourceWithReader creates a new StdinSource with a custom reader.
func NewStdinSourceWithReader(r io.Reader) *StdinSource {
	return &StdinSource{reader: r}
}

// Name returns the source label.
func (s *StdinSource) Name() string {
	return "stdin"
}

// Read reads standard input to EOF.
func (s *StdinSource) Read(ctx context.Context) ([]byte, error) {
	return readLimited(ctx, s.Name(), s.reader)
}

// readLimited reads r up to maxDocumentSize. An empty document is an error.
func readLimited(ctx context.Context, name string, r io.Reader) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, &AdapterError{Source: name, Message: "failed to read input", Err: err}
	}
	if len(data) > maxDocumentSize {
		return nil, &AdapterError{Source: name, Message: fmt.Sprintf("input larger than %d bytes", maxDocumentSize)}
	}
	if len(data) == 0 {
		return nil, &AdapterError{Source: name, Message: "input is empty", Err: io.ErrUnexpectedEOF}
	}
	return data, nil
}
