// Package toolrun executes external media tools with the guard rails every
// pipeline stage needs: a hard timeout, a cap on captured output, and a
// classification of "the binary is not installed" distinct from "the tool ran
// and failed".
package toolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrToolNotInstalled means the process could not be spawned at all, or
	// the shell reported the command as unknown.
	ErrToolNotInstalled = errors.New("tool not installed")

	// ErrToolTimeout means the tool ran past its deadline and was killed.
	ErrToolTimeout = errors.New("tool timed out")

	// ErrToolOutputTooLarge means the tool produced more combined output than
	// the configured cap. Output is never silently truncated into a success.
	ErrToolOutputTooLarge = errors.New("tool output exceeded limit")
)

// DefaultMaxOutput bounds captured stdout+stderr per invocation.
const DefaultMaxOutput = 16 << 20 // 16 MiB

// Spec describes one external tool invocation.
type Spec struct {
	Bin       string
	Args      []string
	Stdin     io.Reader
	Timeout   time.Duration
	MaxOutput int64 // 0 = DefaultMaxOutput
}

// capWriter fails the copy once the limit is crossed. The tripped flag
// survives even when the child then dies of the broken pipe and cmd.Run
// reports the signal instead of the copy error.
type capWriter struct {
	buf     bytes.Buffer
	limit   int64
	tripped bool
}

func (w *capWriter) Write(p []byte) (int, error) {
	if int64(w.buf.Len())+int64(len(p)) > w.limit {
		w.tripped = true
		return 0, ErrToolOutputTooLarge
	}
	return w.buf.Write(p)
}

// Run invokes the tool and returns its combined output. The error, when
// non-nil, wraps one of the sentinels above or carries the tool's own
// diagnostic text for the caller to surface.
func Run(ctx context.Context, spec Spec) ([]byte, error) {
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	limit := spec.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}
	out := &capWriter{limit: limit}

	cmd := exec.CommandContext(ctx, spec.Bin, spec.Args...)
	cmd.Stdin = spec.Stdin
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	if err == nil {
		return out.buf.Bytes(), nil
	}

	switch {
	case IsNotFound(err):
		return out.buf.Bytes(), fmt.Errorf("%w: %s", ErrToolNotInstalled, spec.Bin)
	case out.tripped:
		return out.buf.Bytes(), fmt.Errorf("%w: %s", ErrToolOutputTooLarge, spec.Bin)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return out.buf.Bytes(), fmt.Errorf("%w: %s after %s", ErrToolTimeout, spec.Bin, spec.Timeout)
	default:
		return out.buf.Bytes(), fmt.Errorf("%s: %w\n%s", spec.Bin, err, out.buf.Bytes())
	}
}

// IsNotFound matches both a failed spawn and the textual signatures shells
// and wrappers emit for a missing binary. Exported because stages driven
// through the ffmpeg-go builder see the raw exec error rather than going
// through Run.
func IsNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "executable file not found") ||
		strings.Contains(msg, "no such file or directory") ||
		strings.Contains(msg, "not recognized")
}

// IsNotFoundOutput reports whether captured tool output itself carries a
// missing-binary signature. Some wrappers exit non-zero with the message on
// stderr instead of failing the spawn.
func IsNotFoundOutput(b []byte) bool {
	msg := strings.ToLower(string(b))
	return strings.Contains(msg, "command not found") ||
		strings.Contains(msg, "is not recognized as an internal or external command")
}
