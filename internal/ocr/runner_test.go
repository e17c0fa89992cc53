package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-tracker/internal/common"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunnerMissingTool(t *testing.T) {
	_, _, err := execRunner{logger: discardLogger()}.Run(context.Background(), "po-tracker-no-such-tool", "-v")
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.CodeConfig))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "po-tracker-no-such-tool not found on PATH")
}

func TestExecRunner(t *testing.T) {
	requireShell(t)
	tests := []struct {
		name     string
		script   string
		timeout  time.Duration
		stdout   string
		exitCode int // 0 = success
		errIs    error
		message  string
	}{
		{
			name:   "stdout captured",
			script: "printf 'PURCHASE ORDER'",
			stdout: "PURCHASE ORDER",
		},
		{
			name:     "exit status and stderr kept",
			script:   "printf partial; printf 'bad page\\nmore detail' >&2; exit 3",
			stdout:   "partial",
			exitCode: 3,
			message:  "sh failed (exit 3): bad page",
		},
		{
			name:     "per command timeout",
			script:   "exec sleep 5",
			timeout:  50 * time.Millisecond,
			exitCode: -1,
			errIs:    context.DeadlineExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := execRunner{logger: discardLogger(), timeout: tt.timeout}
			out, _, err := r.Run(context.Background(), "sh", "-c", tt.script)
			assert.Equal(t, tt.stdout, string(out))
			if tt.exitCode == 0 {
				require.NoError(t, err)
				return
			}
			var cerr *CommandError
			require.True(t, errors.As(err, &cerr), "got %T", err)
			assert.Equal(t, "sh", cerr.Tool)
			assert.Equal(t, tt.exitCode, cerr.ExitCode)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
		})
	}
}

func TestExtractorAppliesCommandTimeout(t *testing.T) {
	tests := []struct {
		name string
		cfg  time.Duration
		want time.Duration
	}{
		{name: "default", want: DefaultCommandTimeout},
		{name: "explicit", cfg: time.Second, want: time.Second},
		{name: "disabled", cfg: -1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(Config{CommandTimeout: tt.cfg}, nil)
			r, ok := e.runner.(execRunner)
			require.True(t, ok)
			assert.Equal(t, tt.want, r.timeout)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	got := truncate(strings.Repeat("x", maxStderr+10), maxStderr)
	assert.True(t, strings.HasSuffix(got, "...(truncated)"))
	assert.Len(t, got, maxStderr+len("...(truncated)"))
}
