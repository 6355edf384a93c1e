package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const (
	InterimFile = "log_interim.txt"
	ResultFile  = "log_result.txt"
)

var (
	interimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	resultStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
)

// RunLogger writes the interim and result channels of one run to the
// console and, when a directory is given, to one file per channel.
type RunLogger struct {
	mu      sync.Mutex
	console io.Writer
	plain   bool
	interim *slog.Logger
	result  *slog.Logger
	files   []*os.File
}

type Option func(*RunLogger)

// WithConsole sets the console writer. nil disables console output.
func WithConsole(w io.Writer) Option {
	return func(l *RunLogger) { l.console = w }
}

// Plain disables lipgloss styling on the console.
func Plain() Option {
	return func(l *RunLogger) { l.plain = true }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// New creates a run logger. With an empty dir nothing is written to disk.
func New(dir string, opts ...Option) (*RunLogger, error) {
	l := &RunLogger{
		console: os.Stdout,
		interim: discardLogger(),
		result:  discardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if dir == "" {
		return l, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	interim, err := l.open(filepath.Join(dir, InterimFile))
	if err != nil {
		return nil, err
	}
	result, err := l.open(filepath.Join(dir, ResultFile))
	if err != nil {
		l.Close()
		return nil, err
	}
	l.interim = slog.New(slog.NewTextHandler(interim, nil))
	l.result = slog.New(slog.NewTextHandler(result, nil))
	return l, nil
}

func (l *RunLogger) open(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	l.files = append(l.files, f)
	return f, nil
}

// Discard returns a logger that writes nowhere.
func Discard() *RunLogger {
	l, _ := New("", WithConsole(nil))
	return l
}

func (l *RunLogger) print(style lipgloss.Style, msg string) {
	if l.console == nil {
		return
	}
	if !l.plain {
		msg = style.Render(msg)
	}
	fmt.Fprintln(l.console, msg)
}

func (l *RunLogger) Interim(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.print(interimStyle, msg)
	l.interim.Info(msg)
}

func (l *RunLogger) Result(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.print(resultStyle, msg)
	l.result.Info(msg)
}

// Warn goes to the interim channel at warning level.
func (l *RunLogger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.print(warnStyle, msg)
	l.interim.Warn(msg)
}

func (l *RunLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for _, f := range l.files {
		errs = append(errs, f.Close())
	}
	l.files = nil
	l.interim = discardLogger()
	l.result = discardLogger()
	return errors.Join(errs...)
}

// NewDiagnostic returns the process logger used for library diagnostics.
func NewDiagnostic(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
