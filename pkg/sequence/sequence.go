// Package sequence provides the per-directory counter used by sequential naming.
package sequence

// Counter hands out 1-based indices that restart whenever the directory of
// the processed entry changes. Not safe for concurrent use.
type Counter struct {
	dir  string
	next int
}

// New returns a counter that starts at 1.
func New() *Counter {
	return &Counter{next: 1}
}

// Next returns the index for the next entry in dir and advances the counter.
func (c *Counter) Next(dir string) int {
	if dir != c.dir {
		c.dir = dir
		c.next = 1
	}

	n := c.next
	c.next++
	return n
}

// Reset restarts numbering at 1.
func (c *Counter) Reset() {
	c.dir = ""
	c.next = 1
}
