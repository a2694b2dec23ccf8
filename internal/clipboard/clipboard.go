// Package clipboard reads and writes the system clipboard.
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// DefaultTimeout bounds each clipboard command.
const DefaultTimeout = 5 * time.Second

// Clipboard errors.
var (
	ErrUnavailable = errors.New("no clipboard available")
	ErrPermission  = errors.New("clipboard access denied")
	ErrEmpty       = errors.New("clipboard is empty or not text")
)

// Clipboard reads and writes plain text.
type Clipboard interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, text string) error
}

// Config selects the clipboard commands. Empty commands are auto-detected.
type Config struct {
	ReadCommand  string
	WriteCommand string
	Timeout      time.Duration
}

// System is the desktop clipboard, driven through wl-clipboard, xclip or
// xsel when available and through atotto/clipboard otherwise.
type System struct {
	cfg      Config
	lookPath func(string) (string, error)
}

// NewSystem creates a System clipboard.
func NewSystem(cfg Config) *System {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &System{cfg: cfg, lookPath: exec.LookPath}
}

// Read returns the clipboard text.
func (s *System) Read(ctx context.Context) (string, error) {
	parts := s.readCommand()
	if len(parts) == 0 {
		return readFallback()
	}

	out, err := s.run(ctx, parts, nil)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s", ErrEmpty, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	if len(out) == 0 {
		return "", ErrEmpty
	}
	return string(out), nil
}

// Write places text on the clipboard.
func (s *System) Write(ctx context.Context, text string) error {
	parts := s.writeCommand()
	if len(parts) == 0 {
		return writeFallback(text)
	}

	_, err := s.run(ctx, parts, strings.NewReader(text))
	return err
}

// readCommand returns the configured or detected paste command.
func (s *System) readCommand() []string {
	if s.cfg.ReadCommand != "" {
		return strings.Fields(s.cfg.ReadCommand)
	}
	return s.detect([][]string{
		{"wl-paste", "--no-newline"},
		{"xclip", "-selection", "clipboard", "-o"},
		{"xsel", "--clipboard", "--output"},
	})
}

// writeCommand returns the configured or detected copy command.
func (s *System) writeCommand() []string {
	if s.cfg.WriteCommand != "" {
		return strings.Fields(s.cfg.WriteCommand)
	}
	return s.detect([][]string{
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
	})
}

// detect returns the first candidate whose binary is on PATH.
func (s *System) detect(candidates [][]string) []string {
	for _, c := range candidates {
		if _, err := s.lookPath(c[0]); err == nil {
			return c
		}
	}
	return nil
}

// run executes a clipboard command with the configured timeout.
func (s *System) run(ctx context.Context, parts []string, stdin *strings.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("running clipboard command", "command", parts[0])

	out, err := cmd.Output()
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, exec.ErrNotFound):
		return nil, fmt.Errorf("%w: %s not found", ErrUnavailable, parts[0])
	case errors.Is(err, os.ErrPermission):
		return nil, fmt.Errorf("%w: %v", ErrPermission, err)
	case ctx.Err() != nil:
		return nil, fmt.Errorf("clipboard command %s: %w", parts[0], ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitErr.Stderr = stderr.Bytes()
	}
	return nil, fmt.Errorf("clipboard command %s failed: %w", parts[0], err)
}

func readFallback() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func writeFallback(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Memory is an in-process clipboard. The error fields, when set, are
// returned by the matching call.
type Memory struct {
	mu       sync.Mutex
	text     string
	ReadErr  error
	WriteErr error
}

// NewMemory creates a Memory clipboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

// Read returns the stored text.
func (m *Memory) Read(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	if m.text == "" {
		return "", ErrEmpty
	}
	return m.text, nil
}

// Write stores text.
func (m *Memory) Write(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.text = text
	return nil
}

// Text returns the stored text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
