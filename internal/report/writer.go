package report

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"willdo/pkg/logx"
)

// Writer persists human-readable reports.
//
// Explicit output paths win; otherwise reports land under
// <resultsDir>/<task name>/<timestamp>.txt. Collisions within the same
// second are an accepted limitation of the default naming.
type Writer struct {
	resultsDir string
	rootDir    string
	log        logx.Logger

	now func() time.Time
}

func NewWriter(resultsDir, rootDir string, log logx.Logger) *Writer {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Writer{
		resultsDir: resultsDir,
		rootDir:    rootDir,
		log:        log,
		now:        time.Now,
	}
}

// Save writes reportText and returns the path written. An explicit
// outputPath is resolved against the root dir when relative; parent
// directories are created as needed.
func (w *Writer) Save(taskName, reportText, outputPath string) (string, error) {
	path := strings.TrimSpace(outputPath)
	if path != "" {
		if !filepath.IsAbs(path) && w.rootDir != "" {
			path = filepath.Join(w.rootDir, path)
		}
	} else {
		dir := filepath.Join(w.resultsDir, safeName(taskName))
		path = filepath.Join(dir, w.now().Format("2006-01-02_15-04-05")+".txt")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(reportText), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// safeName keeps task names usable as directory names. Task names are
// human labels, not identifiers, so slashes do show up.
func safeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unnamed"
	}
	repl := strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_")
	return repl.Replace(name)
}
