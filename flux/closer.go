package flux

import (
	"io"
	"sync"

	"github.com/teranos/minigen/errors"
)

// CompositeCloser closes a group of closers together, once.
type CompositeCloser struct {
	mu      sync.Mutex
	closers []io.Closer
	closed  bool
}

// NewCompositeCloser creates a closer over cs.
func NewCompositeCloser(cs ...io.Closer) *CompositeCloser {
	return &CompositeCloser{closers: cs}
}

// Add appends c. Adding to a closed composite closes c right away.
func (c *CompositeCloser) Add(cl io.Closer) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return cl.Close()
	}
	c.closers = append(c.closers, cl)
	c.mu.Unlock()
	return nil
}

// Close closes every member in reverse order of addition. Later calls do
// nothing.
func (c *CompositeCloser) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		if cerr := closers[i].Close(); cerr != nil {
			err = errors.CombineErrors(err, cerr)
		}
	}
	return err
}
