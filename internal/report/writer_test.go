package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"willdo/pkg/logx"
)

func TestWriterDefaultPath(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	w := NewWriter(filepath.Join(root, "task_results"), root, logx.Nop())
	w.now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 6, 0, time.Local) }

	path, err := w.Save("My Digest", "hello", "")
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	want := filepath.Join(root, "task_results", "My Digest", "2025-02-03_04-05-06.txt")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "hello" {
		t.Fatalf("content = %q, err %v", b, err)
	}
}

func TestWriterExplicitRelativePath(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	w := NewWriter(filepath.Join(root, "task_results"), root, logx.Nop())

	path, err := w.Save("x", "report", filepath.Join("reports", "out.md"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !strings.HasPrefix(path, root) {
		t.Fatalf("relative output not resolved against root: %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report not written: %v", err)
	}
}

func TestWriterSanitizesTaskName(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	w := NewWriter(filepath.Join(root, "results"), root, logx.Nop())

	path, err := w.Save("a/b", "x", "")
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if strings.Contains(filepath.Base(filepath.Dir(path)), "/") {
		t.Fatalf("task name not sanitized: %q", path)
	}
}
