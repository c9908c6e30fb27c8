package sqlengine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/internal/adapters"
)

// rowCursor implements docstore.Cursor over the rows of one select query.
type rowCursor struct {
	engine   *Engine
	ctx      context.Context
	rows     adapters.DBRows
	start    time.Time
	tracer   *tracingObserver
	metrics  *metricsObserver
	document []byte
	count    int64
	err      error
	once     sync.Once
}

// Next scans the next document. It returns false at the end of the result set or on failure.
func (c *rowCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}

	var document []byte
	if scanErr := c.rows.Scan(&document); scanErr != nil {
		c.engine.logError(c.ctx, logMsgScanRowFailed, scanErr)
		c.err = errors.Join(docstore.ErrScanningDBRowFailed, scanErr)

		return false
	}

	c.document = document
	c.count++

	return true
}

// Document returns the raw JSON of the current row.
func (c *rowCursor) Document() []byte {
	return c.document
}

// Err returns the failure that ended the iteration, if any.
func (c *rowCursor) Err() error {
	if c.err != nil {
		return c.err
	}

	if rowsErr := c.rows.Err(); rowsErr != nil {
		c.engine.logError(c.ctx, logMsgRowsFailed, rowsErr)
		c.err = c.engine.markTimeout(errors.Join(docstore.ErrQueryingDocumentsFailed, rowsErr))
	}

	return c.err
}

// Close releases the rows and finishes the span and metrics of the find operation.
func (c *rowCursor) Close() error {
	var closeErr error

	c.once.Do(func() {
		closeErr = c.rows.Close()
		if closeErr != nil {
			c.engine.logWarning(c.ctx, logMsgCloseRowsFailed, closeErr)
		}

		duration := time.Since(c.start)

		if err := c.Err(); err != nil {
			errorType := errorTypeOf(err, errorTypeRowScan)
			c.metrics.recordError(errorType, duration)
			c.tracer.finishError(errorType, duration)

			return
		}

		c.engine.logOperation(
			c.ctx,
			logMsgFindCompleted,
			logAttrDocumentCount, c.count,
			logAttrDurationMS, c.engine.toMilliseconds(duration),
		)
		c.metrics.recordSuccess(c.count, duration)
		c.tracer.finishSuccess(spanAttrDocumentCount, c.count, duration)
	})

	return closeErr
}
