package pred

import "sync/atomic"

// ID identifies a predicate node within a tree.
type ID int64

// IDSource hands out predicate ids.
type IDSource interface {
	Next() ID
}

// Counter is a monotonic IDSource. Safe for concurrent use, so several
// builders may share one counter and still produce distinct ids.
type Counter struct {
	seq atomic.Int64
}

// NewCounter creates a counter whose first id is 1.
func NewCounter() *Counter {
	return &Counter{}
}

// NewCounterAt creates a counter whose first id is start+1.
func NewCounterAt(start int64) *Counter {
	c := &Counter{}
	c.seq.Store(start)
	return c
}

// Next implements IDSource.
func (c *Counter) Next() ID {
	return ID(c.seq.Add(1))
}

// Current returns the last id handed out (0 if none).
func (c *Counter) Current() ID {
	return ID(c.seq.Load())
}
