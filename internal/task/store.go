package task

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"willdo/pkg/logx"
)

// Store reads and writes task records in a single directory.
//
// Access is single-writer by construction (one scheduler, one sequential
// pass), so there is no locking discipline here. Running two instances
// against the same directory is unsupported.
type Store struct {
	dir string
	log logx.Logger
}

func NewStore(dir string, log logx.Logger) *Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Store{dir: dir, log: log}
}

func (s *Store) Dir() string { return s.dir }

// Loaded pairs a task with the file it came from.
type Loaded struct {
	Path string
	Task Task
}

// Load reads every *.json file in the task directory, in directory-listing
// order. Files that fail to parse are logged and skipped; a missing
// directory is a warning and yields no tasks. Neither aborts the pass.
func (s *Store) Load() []Loaded {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("tasks directory does not exist", logx.String("dir", s.dir))
			return nil
		}
		s.log.Error("failed to read tasks directory", logx.String("dir", s.dir), logx.Err(err))
		return nil
	}

	var out []Loaded
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())

		b, err := os.ReadFile(path)
		if err != nil {
			s.log.Error("failed to read task file", logx.String("file", e.Name()), logx.Err(err))
			continue
		}
		var t Task
		if err := json.Unmarshal(b, &t); err != nil {
			s.log.Error("failed to parse task file", logx.String("file", e.Name()), logx.Err(err))
			continue
		}
		if t.Name == "" {
			t.Name = e.Name()
		}
		t.EnsureContext()
		out = append(out, Loaded{Path: path, Task: t})
	}
	return out
}

// Persist rewrites a task file in place, using indented JSON with the
// struct's stable field order so the file stays hand-editable. The write
// goes through a temp file and rename to avoid a torn record on crash.
func (s *Store) Persist(path string, t *Task) error {
	t.EnsureContext()

	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
