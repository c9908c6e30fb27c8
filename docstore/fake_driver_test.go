package docstore_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/sqlfilter"
)

// fakeDriver serves a fixed list of documents and records inserted ones.
type fakeDriver struct {
	documents [][]byte
	findErr   error
	insertErr error
	waitOnCtx bool

	findCalls   atomic.Int32
	insertCalls atomic.Int32

	mu       sync.Mutex
	inserted [][]byte
	cursors  []*fakeCursor
}

func newFakeDriver(documentCount int) *fakeDriver {
	d := &fakeDriver{}
	for i := range documentCount {
		d.documents = append(d.documents, []byte(fmt.Sprintf(
			`{"id":%q,"name":"person %d","age":%d,"country":"US","tags":[]}`,
			uuid.NewString(), i, i,
		)))
	}

	return d
}

func (d *fakeDriver) Dialect() sqlfilter.Dialect {
	return sqlfilter.SQLite
}

func (d *fakeDriver) DocumentColumn() string {
	return "doc"
}

func (d *fakeDriver) Find(ctx context.Context, _ sqlfilter.Filter) (docstore.Cursor, error) {
	d.findCalls.Add(1)

	if d.findErr != nil {
		return nil, d.findErr
	}

	cursor := &fakeCursor{ctx: ctx, documents: d.documents, waitOnCtx: d.waitOnCtx, pos: -1}

	d.mu.Lock()
	d.cursors = append(d.cursors, cursor)
	d.mu.Unlock()

	return cursor, nil
}

func (d *fakeDriver) Insert(_ context.Context, document []byte) error {
	d.insertCalls.Add(1)

	if d.insertErr != nil {
		return d.insertErr
	}

	d.mu.Lock()
	d.inserted = append(d.inserted, document)
	d.mu.Unlock()

	return nil
}

func (d *fakeDriver) lastCursor() *fakeCursor {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.cursors) == 0 {
		return nil
	}

	return d.cursors[len(d.cursors)-1]
}

func (d *fakeDriver) insertedDocuments() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([][]byte(nil), d.inserted...)
}

// fakeCursor walks the documents of a fakeDriver. With waitOnCtx it blocks in Next until ctx ends.
type fakeCursor struct {
	ctx       context.Context
	documents [][]byte
	waitOnCtx bool
	pos       int
	err       error

	reads  atomic.Int32
	closed atomic.Bool
}

func (c *fakeCursor) Next() bool {
	if c.closed.Load() {
		return false
	}

	if c.waitOnCtx {
		<-c.ctx.Done()
		c.err = c.ctx.Err()

		return false
	}

	if c.pos+1 >= len(c.documents) {
		return false
	}

	c.pos++
	c.reads.Add(1)

	return true
}

func (c *fakeCursor) Document() []byte {
	return c.documents[c.pos]
}

func (c *fakeCursor) Err() error {
	return c.err
}

func (c *fakeCursor) Close() error {
	c.closed.Store(true)
	return nil
}
