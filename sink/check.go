package sink

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/errors"
)

// Stale reasons.
const (
	ReasonMissing  = "missing"
	ReasonModified = "modified"
	ReasonOrphaned = "orphaned"
)

// StaleFile is a generated file that does not match what would be written.
type StaleFile struct {
	Path     string
	Artifact string
	Reason   string
}

// CheckResult holds the result of a staleness check.
type CheckResult struct {
	UpToDate bool
	Checked  int
	Stale    []StaleFile
}

// Err returns ErrStale listing the stale paths, or nil when up to date.
func (r *CheckResult) Err() error {
	if r.UpToDate {
		return nil
	}
	paths := make([]string, len(r.Stale))
	for i, s := range r.Stale {
		paths[i] = s.Path + " (" + s.Reason + ")"
	}
	return errors.WithHint(
		errors.Wrapf(errors.ErrStale, "%d generated file(s) out of date: %s", len(r.Stale), strings.Join(paths, ", ")),
		"run `minigen generate` to update them")
}

// CheckSink compares artifacts with the files on disk and never writes.
type CheckSink struct {
	// IgnorePrefixes drops lines starting with any of these (after trimming
	// spaces) from both sides before comparing.
	IgnorePrefixes []string

	mu       sync.Mutex
	expected map[string]string // path -> artifact ID
	stale    []StaleFile
}

// NewCheckSink creates a check sink.
func NewCheckSink(ignorePrefixes ...string) *CheckSink {
	return &CheckSink{
		IgnorePrefixes: ignorePrefixes,
		expected:       make(map[string]string),
	}
}

func (s *CheckSink) Write(a engine.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expected[a.Path]; ok {
		return nil
	}
	s.expected[a.Path] = a.ID

	current, err := os.ReadFile(a.Path)
	if os.IsNotExist(err) {
		s.stale = append(s.stale, StaleFile{Path: a.Path, Artifact: a.ID, Reason: ReasonMissing})
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", a.Path)
	}
	if s.different(current, []byte(a.Text)) {
		s.stale = append(s.stale, StaleFile{Path: a.Path, Artifact: a.ID, Reason: ReasonModified})
	}
	return nil
}

func (s *CheckSink) different(a, b []byte) bool {
	if len(s.IgnorePrefixes) == 0 {
		return !bytes.Equal(a, b)
	}
	return filterLines(a, s.IgnorePrefixes) != filterLines(b, s.IgnorePrefixes)
}

// filterLines removes lines starting with one of prefixes. A scanner error
// yields an empty string, which makes the comparison fail.
func filterLines(content []byte, prefixes []string) string {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
next:
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		for _, p := range prefixes {
			if strings.HasPrefix(trimmed, p) {
				continue next
			}
		}
		result.WriteString(line)
		result.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return ""
	}
	return result.String()
}

// Orphans reports files in the checked directories that carry header on
// their first line but were not produced in this run.
func (s *CheckSink) Orphans(header string) error {
	if header == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dirs := make(map[string]bool)
	for p := range s.expected {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, "list %s", dir)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".go") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if _, ok := s.expected[path]; ok {
				continue
			}
			generated, err := hasHeader(path, header)
			if err != nil {
				return err
			}
			if generated {
				s.stale = append(s.stale, StaleFile{Path: path, Reason: ReasonOrphaned})
			}
		}
	}
	return nil
}

func hasHeader(path, header string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()) == header, nil
}

// Result returns the check outcome with stale files sorted by path.
func (s *CheckSink) Result() *CheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	stale := append([]StaleFile(nil), s.stale...)
	sort.Slice(stale, func(i, j int) bool { return stale[i].Path < stale[j].Path })
	return &CheckResult{
		UpToDate: len(stale) == 0,
		Checked:  len(s.expected),
		Stale:    stale,
	}
}
