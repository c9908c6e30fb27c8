package docstore

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
)

// Stream delivers the entities of one Query in store order, one at a time.
//
// The driver call runs in its own goroutine. It decodes the next entity only when the consumer is
// ready for it (or the prefetch buffer has room), so a slow consumer slows the producer down.
// A Stream is consumed once and by a single goroutine; Cancel may be called from any goroutine.
type Stream[T any] struct {
	ctx       context.Context
	cancel    context.CancelFunc
	items     chan T
	done      chan struct{}
	cancelled atomic.Bool

	mu  sync.Mutex
	err error

	current T
}

func newStream[T any](parent context.Context, prefetch int) *Stream[T] {
	ctx, cancel := context.WithCancel(parent)

	return &Stream[T]{
		ctx:    ctx,
		cancel: cancel,
		items:  make(chan T, prefetch),
		done:   make(chan struct{}),
	}
}

// produce runs the driver call. The cursor is closed on every exit path before done is closed.
func (s *Stream[T]) produce(
	open func(ctx context.Context) (Cursor, error),
	decode func(document []byte) (T, error),
) {

	defer close(s.done)
	defer close(s.items)

	cursor, err := open(s.ctx)
	if err != nil {
		s.fail(classify(opFind, err))
		return
	}
	defer func() { _ = cursor.Close() }()

	for cursor.Next() {
		entity, decodeErr := decode(cursor.Document())
		if decodeErr != nil {
			s.fail(decodeErr)
			return
		}

		select {
		case s.items <- entity:
		case <-s.ctx.Done():
			s.fail(classify(opFind, s.ctx.Err()))
			return
		}
	}

	if cursorErr := cursor.Err(); cursorErr != nil {
		s.fail(classify(opFind, cursorErr))
		return
	}

	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.fail(classify(opFind, ctxErr))
	}
}

func (s *Stream[T]) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err == nil {
		s.err = err
	}
}

// Next advances to the next entity. It returns false when the stream is exhausted,
// failed or was cancelled; Err tells these apart.
func (s *Stream[T]) Next() bool {
	if s.cancelled.Load() || s.ctx.Err() != nil {
		s.finish()
		return false
	}

	entity, ok := <-s.items
	if !ok || s.cancelled.Load() || s.ctx.Err() != nil {
		s.finish()
		return false
	}

	s.current = entity

	return true
}

// Entity returns the entity Next advanced to.
func (s *Stream[T]) Entity() T {
	return s.current
}

// Err returns the failure that ended the stream, if any. It wraps ErrCancelled after a
// cancellation, ErrTimeout after a deadline and ErrDriver for store failures.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Cancel stops the stream. No entity is delivered afterwards and the cursor is closed
// when Cancel returns. Err reports ErrCancelled unless every entity had been delivered.
func (s *Stream[T]) Cancel() {
	s.cancelled.Store(true)
	s.cancel()
	<-s.done

	if len(s.items) > 0 {
		s.fail(classify(opFind, context.Canceled))
	}
}

// Done is closed once the producer has finished and released the cursor.
func (s *Stream[T]) Done() <-chan struct{} {
	return s.done
}

// All returns an iterator over the remaining entities. Breaking out of the loop cancels the stream.
// A failure is yielded once as the last pair.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for s.Next() {
			if !yield(s.Entity(), nil) {
				s.Cancel()
				return
			}
		}

		if err := s.Err(); err != nil {
			var empty T
			yield(empty, err)
		}
	}
}

// Collect drains the stream into a slice.
func (s *Stream[T]) Collect() ([]T, error) {
	var entities []T

	for s.Next() {
		entities = append(entities, s.Entity())
	}

	if err := s.Err(); err != nil {
		return entities, err
	}

	return entities, nil
}

// finish waits for the producer and releases the stream context.
func (s *Stream[T]) finish() {
	s.cancel()
	<-s.done
}
