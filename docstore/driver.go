package docstore

import (
	"context"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/sqlfilter"
)

// Driver is the store a Repository talks to. Implementations must honour ctx on every call
// and deliver documents in store order.
type Driver interface {
	Dialect() sqlfilter.Dialect
	DocumentColumn() string
	Find(ctx context.Context, filter sqlfilter.Filter) (Cursor, error)
	Insert(ctx context.Context, document []byte) error
}

// Cursor iterates over the raw JSON documents of one Find call.
// Close must be safe to call more than once.
type Cursor interface {
	Next() bool
	Document() []byte
	Err() error
	Close() error
}
