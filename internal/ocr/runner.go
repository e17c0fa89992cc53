package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/joseph-ayodele/po-tracker/internal/common"
)

// DefaultCommandTimeout bounds a single pdftotext, pdftoppm or tesseract call.
const DefaultCommandTimeout = 2 * time.Minute

// maxStderr caps the stderr kept in logs and errors.
const maxStderr = 8 << 10

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// CommandError is a tool that started but did not finish cleanly.
type CommandError struct {
	Tool     string
	ExitCode int // -1 when the process was killed or never reported one
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d)", e.Tool, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

type execRunner struct {
	logger  *slog.Logger
	timeout time.Duration // 0 = only the caller's deadline applies
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.logger
	if l, ok := ctx.Value(common.ContextKeyLogger).(*slog.Logger); ok && l != nil {
		logger = l
	}

	bin, err := exec.LookPath(name)
	if err != nil {
		logger.Error("ocr tool not found", "tool", name, "error", err)
		return nil, nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("%s not found on PATH", name), errors.Join(common.ErrInvalidConfig, err))
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, bin, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err = cmd.Run()
	dur := time.Since(start)

	if err != nil {
		stderr := truncate(errb.String(), maxStderr)
		cerr := &CommandError{Tool: name, ExitCode: -1, Stderr: stderr, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cerr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			cerr.Err = ctxErr
		}
		logger.Error("ocr tool failed",
			"tool", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"exit_code", cerr.ExitCode,
			"error", cerr.Err,
			"stderr", stderr,
		)
		return out.Bytes(), errb.Bytes(), cerr
	}

	logger.Debug("ocr tool ok",
		"tool", name,
		"args", strings.Join(args, " "),
		"duration_ms", dur.Milliseconds(),
		"stdout_bytes", out.Len(),
		"stderr_bytes", errb.Len(),
	)
	return out.Bytes(), errb.Bytes(), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
