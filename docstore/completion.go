package docstore

import (
	"context"
	"sync"
)

// Completion tracks one asynchronous Insert.
type Completion struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func newCompletion(parent context.Context) *Completion {
	ctx, cancel := context.WithCancel(parent)

	return &Completion{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (c *Completion) run(insert func(ctx context.Context) error) {
	defer close(c.done)
	defer c.cancel()

	if err := insert(c.ctx); err != nil {
		c.mu.Lock()
		c.err = classify(opInsert, err)
		c.mu.Unlock()
	}
}

// Done is closed when the insert has finished.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the insert has finished and returns its outcome.
func (c *Completion) Wait() error {
	<-c.done
	return c.Err()
}

// Err returns the outcome of a finished insert, nil while it is still running.
func (c *Completion) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err
}

// Cancel aborts the insert and waits for the driver call to return.
// Whether the document was stored depends on how far the driver got.
func (c *Completion) Cancel() {
	c.cancel()
	<-c.done
}
