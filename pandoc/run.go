package pandoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Minute

var ErrNotInstalled = errors.New("pandoc is not installed")

// LookupExecutable resolves the pandoc binary.
func LookupExecutable(name string) (string, error) {
	if name == "" {
		name = "pandoc"
	}
	exe, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	return exe, nil
}

// Runner invokes pandoc as a blocking subprocess.
type Runner struct {
	Exe     string
	Timeout time.Duration
	Log     *zap.Logger
}

func NewRunner(exe string, timeout time.Duration, log *zap.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Exe: exe, Timeout: timeout, Log: log}
}

// DocbookToJSON converts the DocBook file src into a pandoc JSON file dst.
func (r *Runner) DocbookToJSON(ctx context.Context, src, dst string) error {
	return r.Run(ctx, "--from", "docbook", "--to", "json", "--output", dst, src)
}

// JSONToRST converts the pandoc JSON file src into reStructuredText.
func (r *Runner) JSONToRST(ctx context.Context, src, dst string) error {
	return r.Run(ctx, "--reference-links", "--from", "json", "--to", "rst", "--output", dst, src)
}

func (r *Runner) Run(ctx context.Context, args ...string) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Exe, args...)
	cmd.WaitDelay = 5 * time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Debug("Running pandoc", zap.String("exe", r.Exe), zap.Strings("args", args))
	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("pandoc timed out after %s: %w", timeout, ctx.Err())
		}
		return fmt.Errorf("pandoc failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if s := strings.TrimSpace(stderr.String()); s != "" {
		log.Warn("Pandoc reported problems", zap.String("stderr", s))
	}
	log.Debug("Pandoc finished", zap.Duration("elapsed", time.Since(start)))
	return nil
}
