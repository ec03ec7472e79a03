package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"

	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/logger"
)

// FileSink writes artifacts to disk. Each file is replaced atomically and
// left untouched when its content is already current, so replays and
// unchanged reruns do not bump modification times.
type FileSink struct {
	mu        sync.Mutex
	written   []string
	unchanged []string
	seen      map[string]string
	log       *zap.SugaredLogger
}

// NewFileSink creates a sink writing to the artifact paths.
func NewFileSink() *FileSink {
	return &FileSink{
		seen: make(map[string]string),
		log:  logger.ComponentLogger("sink.file"),
	}
}

func (s *FileSink) Write(a engine.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.seen[a.Path]; ok {
		if prev != a.Text {
			return errors.Wrapf(errors.ErrConflict, "%s written twice with different content", a.Path)
		}
		return nil
	}

	current, err := os.ReadFile(a.Path)
	if err == nil && bytes.Equal(current, []byte(a.Text)) {
		s.seen[a.Path] = a.Text
		s.unchanged = append(s.unchanged, a.Path)
		s.log.Debugw("Generated file unchanged", logger.FieldPath, a.Path)
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "read %s", a.Path)
	}

	if err := writeAtomic(a.Path, []byte(a.Text)); err != nil {
		return err
	}
	s.seen[a.Path] = a.Text
	s.written = append(s.written, a.Path)
	s.log.Infow("Generated file written", logger.FieldArtifact, a.ID, logger.FieldPath, a.Path)
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	// Write to a temporary file in the same directory, then rename over the
	// target so readers never observe a half-written file.
	f, err := renameio.TempFile(dir, path)
	if err != nil {
		return errors.Wrapf(err, "open temporary file for %s", path)
	}
	defer f.Cleanup()

	if _, err := f.Write(data); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Chmod(0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", path)
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}

// Written returns the paths whose content changed, sorted.
func (s *FileSink) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.written)
}

// Unchanged returns the paths that were already current, sorted.
func (s *FileSink) Unchanged() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.unchanged)
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
