package pandoc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// fakePandoc writes an executable shell script standing in for pandoc.
func fakePandoc(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	fn := filepath.Join(t.TempDir(), "fake-pandoc")
	if err := os.WriteFile(fn, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestRunnerWritesOutput(t *testing.T) {
	exe := fakePandoc(t, `
while [ $# -gt 0 ]; do
	case "$1" in
	--output) out="$2"; shift ;;
	--from) from="$2"; shift ;;
	esac
	shift
done
echo "$from" > "$out"
`)
	r := NewRunner(exe, time.Minute, zaptest.NewLogger(t))
	dst := filepath.Join(t.TempDir(), "out.json")
	if err := r.DocbookToJSON(context.Background(), "in.xml", dst); err != nil {
		t.Fatalf("DocbookToJSON: %v", err)
	}
	buf, _ := os.ReadFile(dst)
	if strings.TrimSpace(string(buf)) != "docbook" {
		t.Errorf("output = %q", buf)
	}

	if err := r.JSONToRST(context.Background(), "in.json", dst); err != nil {
		t.Fatalf("JSONToRST: %v", err)
	}
	buf, _ = os.ReadFile(dst)
	if strings.TrimSpace(string(buf)) != "json" {
		t.Errorf("output = %q", buf)
	}
}

func TestRunnerFailure(t *testing.T) {
	exe := fakePandoc(t, "echo 'unknown reader' >&2\nexit 3\n")
	r := NewRunner(exe, time.Minute, zaptest.NewLogger(t))
	err := r.DocbookToJSON(context.Background(), "a", "b")
	if err == nil || !strings.Contains(err.Error(), "unknown reader") {
		t.Errorf("expected stderr in the error, got %v", err)
	}
}

func TestRunnerTimeout(t *testing.T) {
	// exec keeps the sleeping process the one that gets killed
	exe := fakePandoc(t, "exec sleep 60\n")
	r := NewRunner(exe, 300*time.Millisecond, zaptest.NewLogger(t))

	start := time.Now()
	err := r.DocbookToJSON(context.Background(), "a", "b")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected a timeout, got %v", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Errorf("timeout took %s", time.Since(start))
	}
}

func TestLookupExecutable(t *testing.T) {
	_, err := LookupExecutable("dbrst-no-such-pandoc")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("expected ErrNotInstalled, got %v", err)
	}
	exe := fakePandoc(t, "exit 0\n")
	got, err := LookupExecutable(exe)
	if err != nil || got != exe {
		t.Errorf("LookupExecutable(%s) = %s, %v", exe, got, err)
	}
}
