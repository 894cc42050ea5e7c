// Package progress reports per-item progress of long-running stages to an
// operator. Reporting is observational only; stages never depend on it.
package progress

import (
	"fmt"
	"io"
)

// Reporter is told about each completed unit of work.
type Reporter interface {
	Step(label string)
}

// Counter writes one line per step, e.g. "[fetch] 3/10 au:smith".
type Counter struct {
	w     io.Writer
	name  string
	total int
	done  int
}

// NewCounter returns a Counter for a stage with total expected steps.
// A total of zero omits the denominator.
func NewCounter(w io.Writer, name string, total int) *Counter {
	return &Counter{w: w, name: name, total: total}
}

// Step records one completed unit and prints it.
func (c *Counter) Step(label string) {
	c.done++
	if c.w == nil {
		return
	}
	switch {
	case c.total > 0 && label != "":
		fmt.Fprintf(c.w, "[%s] %d/%d %s\n", c.name, c.done, c.total, label)
	case c.total > 0:
		fmt.Fprintf(c.w, "[%s] %d/%d\n", c.name, c.done, c.total)
	default:
		fmt.Fprintf(c.w, "[%s] %d %s\n", c.name, c.done, label)
	}
}

// Done returns the number of steps recorded so far.
func (c *Counter) Done() int { return c.done }

type nop struct{}

func (nop) Step(string) {}

// Nop discards every step.
var Nop Reporter = nop{}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop
	}
	return r
}
