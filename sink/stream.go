package sink

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/errors"
)

// StreamSink prints artifacts to a writer, each preceded by a banner line
// naming its path. Replays of an identity already printed are skipped.
type StreamSink struct {
	mu      sync.Mutex
	w       io.Writer
	printed map[string]bool
}

// NewStreamSink creates a sink printing to w (usually os.Stdout).
func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: w, printed: make(map[string]bool)}
}

func (s *StreamSink) Write(a engine.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.printed[a.ID] {
		return nil
	}
	text := a.Text
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := fmt.Fprintf(s.w, "==> %s <==\n%s", a.Path, text); err != nil {
		return errors.Wrapf(err, "print %s", a.ID)
	}
	s.printed[a.ID] = true
	return nil
}
