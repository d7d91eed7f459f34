package history

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"willdo/pkg/logx"
)

func TestFileStoreAppend(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "willdo_history")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer st.Close()

	recs := []Record{
		{At: time.Now(), TaskName: "a", TaskPath: "tasks/a.json", Outcome: "succeeded", TookMS: 120},
		{At: time.Now(), TaskName: "b", TaskPath: "tasks/b.json", Outcome: "failed", Error: "boom"},
	}
	for _, r := range recs {
		if err := st.Append(context.Background(), r); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "willdo_history.runs.jsonl"))
	if err != nil {
		t.Fatalf("open jsonl: %v", err)
	}
	defer f.Close()

	var lines int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("line %d not valid JSON: %v", lines, err)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("got %d lines, want 2", lines)
	}
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none"} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = (%v, %v), want (nil, nil)", driver, st, err)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
