// Package clipboard is the boundary between composed payloads and the system clipboard.
// Copies never fail loudly: every outcome is reported as a Result the caller can turn
// into a transient status label.
package clipboard

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"

	apperrors "github.com/dpshade/pocket-meta/internal/errors"
)

// Status labels reported back to the rendering surface.
const (
	StatusCopied    = "Copied to clipboard!"
	StatusNotCopied = "Not copied"
)

// MaxOSC52Bytes bounds what the terminal fallback will attempt to send.
const MaxOSC52Bytes = 100_000

// Writer places text on some clipboard.
type Writer interface {
	Write(text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(text string) error

func (f WriterFunc) Write(text string) error { return f(text) }

// ClipboardError represents an error when no clipboard utility is available
type ClipboardError struct {
	OS      string
	Message string
}

func (e *ClipboardError) Error() string {
	return e.Message
}

// NewClipboardError creates a new ClipboardError with helpful installation instructions
func NewClipboardError() *ClipboardError {
	return &ClipboardError{
		OS:      runtime.GOOS,
		Message: "no clipboard utility found. " + GetInstallInstructions(),
	}
}

// SystemWriter writes through the platform clipboard utilities.
type SystemWriter struct{}

func (SystemWriter) Write(text string) error {
	if clipboard.Unsupported {
		return NewClipboardError()
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("system clipboard: %w", err)
	}
	return nil
}

// OSC52Writer asks the terminal to set its clipboard with an OSC 52 escape sequence.
// Out must be a terminal; anything else would swallow the sequence.
type OSC52Writer struct {
	Out io.Writer
}

func (w OSC52Writer) Write(text string) error {
	if len(text) > MaxOSC52Bytes {
		return fmt.Errorf("osc52: payload of %d bytes exceeds %d", len(text), MaxOSC52Bytes)
	}
	out := w.Out
	if out == nil {
		out = os.Stderr
	}
	if !isTerminal(out) {
		return fmt.Errorf("osc52: output is not a terminal")
	}

	if _, err := osc52Sequence(text).WriteTo(out); err != nil {
		return fmt.Errorf("osc52: %w", err)
	}
	return nil
}

func osc52Sequence(text string) osc52.Sequence {
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	} else if os.Getenv("STY") != "" {
		seq = seq.Screen()
	}
	return seq
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Chain tries each writer once, in order, and stops at the first success.
type Chain []Writer

func (c Chain) Write(text string) error {
	if len(c) == 0 {
		return NewClipboardError()
	}
	var lastErr error
	for _, w := range c {
		if err := w.Write(text); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// Default returns the system clipboard with the terminal escape as fallback.
func Default(terminal io.Writer) Writer {
	return Chain{SystemWriter{}, OSC52Writer{Out: terminal}}
}

// Result is the outcome of one copy request.
type Result struct {
	Copied bool
	Status string
	Err    error
}

// Copy writes text through w and reports the outcome. It never panics.
func Copy(w Writer, text string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Status: StatusNotCopied,
				Err:    apperrors.ClipboardError(fmt.Errorf("clipboard writer panicked: %v", r)),
			}
		}
	}()

	if w == nil {
		return Result{Status: StatusNotCopied, Err: apperrors.ClipboardError(NewClipboardError())}
	}
	if err := w.Write(text); err != nil {
		return Result{Status: StatusNotCopied, Err: apperrors.ClipboardError(err)}
	}
	return Result{Copied: true, Status: StatusCopied}
}

// IsClipboardAvailable reports whether a system clipboard utility was found.
func IsClipboardAvailable() bool {
	return !clipboard.Unsupported
}

// GetInstallInstructions returns installation instructions for clipboard utilities
func GetInstallInstructions() string {
	switch runtime.GOOS {
	case "linux":
		return "Install a clipboard utility:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", runtime.GOOS)
	}
}
