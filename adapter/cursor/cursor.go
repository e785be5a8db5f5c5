// Package cursor contains the default [domain.Cursor] implementation: a
// forward-only iterator over already-filtered records with typed decoding on
// scan.
package cursor

import (
	"context"
	"sync"

	"github.com/siftkit/sift/adapter/decoder"
	"github.com/siftkit/sift/domain"
)

// Cursor implements [domain.Cursor].
type Cursor struct {
	mu      sync.Mutex
	data    []any
	dec     domain.Decoder
	started bool
	closed  bool
	err     error
}

// NewCursor returns a cursor over the given records with the given options
// applied.
func NewCursor(data []any, options ...Option) domain.Cursor {
	c := &Cursor{data: data, dec: decoder.NewDecoder()}
	for _, option := range options {
		option(c)
	}
	return c
}

// Next implements [domain.Cursor].
func (c *Cursor) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if c.started {
		if len(c.data) > 0 {
			c.data = c.data[1:]
		}
	}
	c.started = true
	return len(c.data) > 0
}

// Scan implements [domain.Cursor].
func (c *Cursor) Scan(ctx context.Context, target any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return domain.ErrCursorClosed
	case !c.started:
		return domain.ErrScanBeforeNext
	case len(c.data) == 0:
		return domain.ErrScanBeforeNext
	}
	if err := c.dec.Decode(c.data[0], target); err != nil {
		c.err = err
		return err
	}
	return nil
}

// Err implements [domain.Cursor].
func (c *Cursor) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close implements [domain.Cursor].
func (c *Cursor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.data = nil
	return nil
}

// Option configures cursor behavior through the functional options pattern.
type Option func(*Cursor)

// WithDecoder sets the decoder used by [Cursor.Scan].
func WithDecoder(d domain.Decoder) Option {
	return func(c *Cursor) {
		c.dec = d
	}
}
