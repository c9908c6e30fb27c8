package docstore

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/sqlfilter"
)

const (
	logMsgTranslationFailed = "failed to translate criteria"
	logMsgEncodingFailed    = "failed to encode document"
	logMsgFilterCacheHit    = "translated filter served from cache"
	logAttrError            = "error"
	logAttrCriteria         = "criteria"
	logAttrFingerprint      = "fingerprint"
)

type repositoryOptions struct {
	filterCacheSize int
	prefetch        int
	logger          Logger
}

// RepositoryOption defines a functional option for configuring a Repository.
type RepositoryOption func(*repositoryOptions) error

// WithFilterCache keeps up to size translated filters, keyed by the criteria fingerprint.
func WithFilterCache(size int) RepositoryOption {
	return func(o *repositoryOptions) error {
		if size <= 0 {
			return errors.Join(ErrInvalidOption, fmt.Errorf("filter cache size must be positive, got %d", size))
		}

		o.filterCacheSize = size

		return nil
	}
}

// WithPrefetch lets a Stream decode up to n entities ahead of its consumer.
// The default of 0 hands over one entity at a time.
func WithPrefetch(n int) RepositoryOption {
	return func(o *repositoryOptions) error {
		if n < 0 {
			return errors.Join(ErrInvalidOption, fmt.Errorf("prefetch must not be negative, got %d", n))
		}

		o.prefetch = n

		return nil
	}
}

// WithLogger sets the logger for the Repository.
// Debug level: filter cache hits
// Error level: translation and encoding failures.
func WithLogger(logger Logger) RepositoryOption {
	return func(o *repositoryOptions) error {
		o.logger = logger
		return nil
	}
}

// Repository queries and stores entities of type T through a Driver.
// It is safe for concurrent use; every operation runs in its own goroutine.
type Repository[T any] struct {
	driver     Driver
	mapper     Mapper[T]
	registry   criteria.CodecRegistry
	translator sqlfilter.Translator
	filters    *lru.Cache[string, sqlfilter.Filter]
	prefetch   int
	logger     Logger
}

// NewRepository creates a Repository. The registry must be the one the stored documents were encoded with.
func NewRepository[T any](
	driver Driver,
	mapper Mapper[T],
	registry criteria.CodecRegistry,
	options ...RepositoryOption,
) (*Repository[T], error) {

	if driver == nil {
		return nil, ErrNilDriver
	}

	if mapper == nil {
		return nil, ErrNilMapper
	}

	o := repositoryOptions{}
	for _, option := range options {
		if err := option(&o); err != nil {
			return nil, err
		}
	}

	r := &Repository[T]{
		driver:     driver,
		mapper:     mapper,
		registry:   registry,
		translator: sqlfilter.NewTranslator(driver.Dialect(), registry, driver.DocumentColumn()),
		prefetch:   o.prefetch,
		logger:     o.logger,
	}

	if o.filterCacheSize > 0 {
		filters, err := lru.New[string, sqlfilter.Filter](o.filterCacheSize)
		if err != nil {
			return nil, errors.Join(ErrInvalidOption, err)
		}

		r.filters = filters
	}

	return r, nil
}

// Query starts streaming every stored entity matching c.
//
// Translation failures (*criteria.UnsupportedTypeError, *criteria.UnsupportedOperatorError) are returned
// here, before the driver is called. Driver failures surface through Stream.Err.
func (r *Repository[T]) Query(ctx context.Context, c criteria.Criteria[T]) (*Stream[T], error) {
	filter, err := r.filterFor(c)
	if err != nil {
		r.logError(logMsgTranslationFailed, err, logAttrCriteria, c.String())
		return nil, err
	}

	stream := newStream[T](ctx, r.prefetch)
	go stream.produce(
		func(ctx context.Context) (Cursor, error) {
			return r.driver.Find(ctx, filter)
		},
		r.decode,
	)

	return stream, nil
}

// Insert stores entity. The document is encoded before this method returns, so an unregistered
// field type fails here with *criteria.UnsupportedTypeError and the driver is never called.
func (r *Repository[T]) Insert(ctx context.Context, entity T) (*Completion, error) {
	document, err := encodeDocument(r.registry, r.mapper.ToValues(entity))
	if err != nil {
		r.logError(logMsgEncodingFailed, err)
		return nil, err
	}

	completion := newCompletion(ctx)
	go completion.run(func(ctx context.Context) error {
		return r.driver.Insert(ctx, document)
	})

	return completion, nil
}

// Translate compiles c into the store native filter without running it.
func (r *Repository[T]) Translate(c criteria.Criteria[T]) (sqlfilter.Filter, error) {
	return r.filterFor(c)
}

func (r *Repository[T]) filterFor(c criteria.Criteria[T]) (sqlfilter.Filter, error) {
	if r.filters == nil {
		return sqlfilter.TranslateCriteria(r.translator, c)
	}

	fingerprint := c.Fingerprint()
	if filter, ok := r.filters.Get(fingerprint); ok {
		if r.logger != nil {
			r.logger.Debug(logMsgFilterCacheHit, logAttrFingerprint, fingerprint)
		}

		return filter, nil
	}

	filter, err := sqlfilter.TranslateCriteria(r.translator, c)
	if err != nil {
		return sqlfilter.Filter{}, err
	}

	r.filters.Add(fingerprint, filter)

	return filter, nil
}

func (r *Repository[T]) decode(document []byte) (T, error) {
	var empty T

	values, err := decodeDocument(r.registry, r.mapper.Fields(), document)
	if err != nil {
		return empty, &DriverError{Op: opDecode, Err: err}
	}

	entity, err := r.mapper.FromDocument(values)
	if err != nil {
		return empty, &DriverError{Op: opDecode, Err: errors.Join(ErrDecodingDocumentFailed, err)}
	}

	return entity, nil
}

func (r *Repository[T]) logError(message string, err error, args ...any) {
	if r.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		r.logger.Error(message, allArgs...)
	}
}
