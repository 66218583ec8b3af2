package dd

import (
	"context"

	"github.com/zbennett/bbo-extension/internal/notation"
)

// Call is the pending outcome of one Solve. It settles exactly once.
type Call struct {
	done chan struct{}
	res  *notation.Analysis
	err  error
}

func newCall() *Call {
	return &Call{done: make(chan struct{})}
}

func settled(res *notation.Analysis, err error) *Call {
	c := newCall()
	c.settle(res, err)
	return c
}

func (c *Call) settle(res *notation.Analysis, err error) {
	c.res, c.err = res, err
	close(c.done)
}

func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call settles or ctx ends. Giving up on the wait does
// not cancel the underlying fetch.
func (c *Call) Wait(ctx context.Context) (*notation.Analysis, error) {
	select {
	case <-c.done:
		return c.res, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result reports the outcome without blocking; ok is false while pending.
func (c *Call) Result() (res *notation.Analysis, err error, ok bool) {
	select {
	case <-c.done:
		return c.res, c.err, true
	default:
		return nil, nil, false
	}
}
