package sqlengine

import (
	"errors"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
)

// Option defines a functional option for configuring an Engine.
type Option func(*Engine) error

// WithTableName sets the table holding the documents.
func WithTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return docstore.ErrEmptyTableName
		}

		e.tableName = tableName

		return nil
	}
}

// WithDocumentColumn sets the column holding the JSON documents.
func WithDocumentColumn(column string) Option {
	return func(e *Engine) error {
		if column == "" {
			return errors.Join(docstore.ErrEmptyColumnName, errors.New("document column"))
		}

		e.documentColumn = column

		return nil
	}
}

// WithKeyColumn sets the auto-incrementing key column that defines the store order.
func WithKeyColumn(column string) Option {
	return func(e *Engine) error {
		if column == "" {
			return errors.Join(docstore.ErrEmptyColumnName, errors.New("key column"))
		}

		e.keyColumn = column

		return nil
	}
}

// WithLogger sets the logger for the Engine.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Document counts and durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger docstore.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, e.g. one correlating log records with trace spans.
func WithContextualLogger(logger docstore.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
// It receives find and insert durations, document counts and database errors.
func WithMetrics(collector docstore.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
// It receives one span per find and insert operation.
func WithTracing(collector docstore.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}
