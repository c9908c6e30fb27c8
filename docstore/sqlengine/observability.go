package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
)

const (
	spanNameFind          = "docstore.find"
	spanNameInsert        = "docstore.insert"
	spanAttrOperation     = "operation"
	spanAttrTable         = "table"
	spanAttrDialect       = "dialect"
	spanAttrDocumentCount = "document_count"
	spanAttrRowsAffected  = "rows_affected"
	spanAttrDurationMS    = "duration_ms"
	spanAttrErrorType     = "error_type"
	labelStatus           = "status"
	statusSuccess         = "success"
	statusError           = "error"
	operationFind         = "find"
	operationInsert       = "insert"

	metricFindDuration      = "docstore_find_duration_seconds"
	metricDocumentsFound    = "docstore_documents_found"
	metricInsertDuration    = "docstore_insert_duration_seconds"
	metricDocumentsInserted = "docstore_documents_inserted_total"
	metricDatabaseErrors    = "docstore_database_errors_total"

	errorTypeBuildQuery    = "build_query"
	errorTypeDatabaseQuery = "database_query"
	errorTypeDatabaseExec  = "database_exec"
	errorTypeRowScan       = "row_scan"
	errorTypeRowsAffected  = "rows_affected"
	errorTypeTimeout       = "timeout"
	errorTypeCancelled     = "cancelled"
)

// errorTypeOf refines errorType for cancellations and timeouts.
func errorTypeOf(err error, errorType string) string {
	switch {
	case errors.Is(err, context.Canceled):
		return errorTypeCancelled
	case errors.Is(err, docstore.ErrTimeout):
		return errorTypeTimeout
	default:
		return errorType
	}
}

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (e *Engine) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if e.logger != nil {
		e.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, e.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, e.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level.
func (e *Engine) logOperation(ctx context.Context, action string, args ...any) {
	if e.logger != nil {
		e.logger.Info(logMsgOperation+action, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarning logs non-critical issues at warn level.
func (e *Engine) logWarning(ctx context.Context, message string, err error) {
	if e.logger != nil {
		e.logger.Warn(message, logAttrError, err.Error())
	}

	if e.contextualLogger != nil {
		e.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
	}
}

// logError logs failures at error level.
func (e *Engine) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if e.logger != nil {
		e.logger.Error(message, allArgs...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (e *Engine) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func (e *Engine) formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2f", e.toMilliseconds(d))
}

// recordDuration records a duration metric with context if the collector supports it.
func (e *Engine) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(docstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	e.metricsCollector.RecordDuration(metric, duration, labels)
}

// recordValue records a value metric with context if the collector supports it.
func (e *Engine) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(docstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	e.metricsCollector.RecordValue(metric, value, labels)
}

// incrementCounter increments a counter metric with context if the collector supports it.
func (e *Engine) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(docstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	e.metricsCollector.IncrementCounter(metric, labels)
}

// === Tracing Observer Pattern ===

// tracingObserver encapsulates the span lifecycle of one find or insert operation.
type tracingObserver struct {
	e    *Engine
	span docstore.SpanContext
}

// startTracing starts a span if the tracing collector is configured.
func (e *Engine) startTracing(ctx context.Context, spanName, operation string) (*tracingObserver, context.Context) {
	observer := &tracingObserver{e: e}
	if e.tracingCollector == nil {
		return observer, ctx
	}

	newCtx, span := e.tracingCollector.StartSpan(ctx, spanName, map[string]string{
		spanAttrOperation: operation,
		spanAttrTable:     e.tableName,
		spanAttrDialect:   e.dialect.Name(),
	})
	observer.span = span

	return observer, newCtx
}

// finishSuccess completes the span with the number of documents found or inserted.
func (o *tracingObserver) finishSuccess(countAttr string, count int64, duration time.Duration) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(statusSuccess)
	o.span.AddAttribute(countAttr, strconv.FormatInt(count, 10))
	o.span.AddAttribute(spanAttrDurationMS, o.e.formatDuration(duration))

	o.e.tracingCollector.FinishSpan(o.span, statusSuccess, map[string]string{
		countAttr: strconv.FormatInt(count, 10),
	})
}

// finishError completes the span with error details.
func (o *tracingObserver) finishError(errorType string, duration time.Duration) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(statusError)
	o.span.AddAttribute(spanAttrErrorType, errorType)

	if duration > 0 {
		o.span.AddAttribute(spanAttrDurationMS, o.e.formatDuration(duration))
	}

	o.e.tracingCollector.FinishSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// === Metrics Observer Pattern ===

// metricsObserver encapsulates the metrics of one find or insert operation.
type metricsObserver struct {
	e              *Engine
	ctx            context.Context
	operation      string
	durationMetric string
	countMetric    string
}

func (e *Engine) startFindMetrics(ctx context.Context) *metricsObserver {
	return &metricsObserver{
		e:              e,
		ctx:            ctx,
		operation:      operationFind,
		durationMetric: metricFindDuration,
		countMetric:    metricDocumentsFound,
	}
}

func (e *Engine) startInsertMetrics(ctx context.Context) *metricsObserver {
	return &metricsObserver{
		e:              e,
		ctx:            ctx,
		operation:      operationInsert,
		durationMetric: metricInsertDuration,
		countMetric:    metricDocumentsInserted,
	}
}

// recordSuccess records duration and document count of a successful operation.
func (o *metricsObserver) recordSuccess(count int64, duration time.Duration) {
	labels := map[string]string{spanAttrOperation: o.operation, labelStatus: statusSuccess}

	o.e.recordDuration(o.ctx, o.durationMetric, duration, labels)
	o.e.recordValue(o.ctx, o.countMetric, float64(count), labels)
}

// recordError records duration and error counter of a failed operation.
func (o *metricsObserver) recordError(errorType string, duration time.Duration) {
	o.e.recordDuration(o.ctx, o.durationMetric, duration, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       statusError,
	})

	o.e.incrementCounter(o.ctx, metricDatabaseErrors, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	})
}
