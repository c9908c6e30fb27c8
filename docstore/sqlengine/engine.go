package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/internal/adapters"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/sqlfilter"
)

const (
	defaultTableName             = "documents"
	defaultDocumentColumn        = "document"
	defaultKeyColumn             = "id"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed during document insert"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgRowsFailed             = "database rows iteration failed"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgCreateTableFailed      = "failed to create document table"
	logMsgFindCompleted          = "find completed"
	logMsgDocumentInserted       = "document inserted"
	logMsgTableEnsured           = "table ensured"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "docstore operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrDocumentCount         = "document_count"
	logAttrDurationMS            = "duration_ms"
	logAttrRowsAffected          = "rows_affected"
	logAttrTable                 = "table"
	logActionFind                = "find"
	logActionInsert              = "insert"
	logActionCreateTable         = "create_table"
)

// Engine stores JSON documents in one SQL table and runs translated filters against it.
// It implements docstore.Driver.
type Engine struct {
	db               adapters.DBAdapter
	dialect          sqlfilter.Dialect
	statements       sqlfilter.Statements
	tableName        string
	documentColumn   string
	keyColumn        string
	logger           docstore.Logger
	contextualLogger docstore.ContextualLogger
	metricsCollector docstore.MetricsCollector
	tracingCollector docstore.TracingCollector
}

// NewPostgresEngineFromPGXPool creates a new Postgres Engine using a pgx Pool with optional configuration.
func NewPostgresEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, docstore.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), sqlfilter.Postgres, options)
}

// NewPostgresEngineFromPGXPoolWithReplica creates a new Postgres Engine that serves queries asking
// for docstore.EventualConsistency from the replica pool. Inserts always use the primary pool.
func NewPostgresEngineFromPGXPoolWithReplica(primary, replica *pgxpool.Pool, options ...Option) (*Engine, error) {
	if primary == nil || replica == nil {
		return nil, docstore.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapterWithReplica(primary, replica), sqlfilter.Postgres, options)
}

// NewPostgresEngineFromSQLDB creates a new Postgres Engine using a sql.DB with optional configuration.
func NewPostgresEngineFromSQLDB(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, docstore.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), sqlfilter.Postgres, options)
}

// NewPostgresEngineFromSQLX creates a new Postgres Engine using a sqlx.DB with optional configuration.
func NewPostgresEngineFromSQLX(db *sqlx.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, docstore.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), sqlfilter.Postgres, options)
}

// NewSQLiteEngine creates a new SQLite Engine using a sql.DB opened with a SQLite driver
// that ships the JSON1 functions.
func NewSQLiteEngine(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, docstore.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), sqlfilter.SQLite, options)
}

func newEngine(db adapters.DBAdapter, dialect sqlfilter.Dialect, options []Option) (*Engine, error) {
	e := &Engine{
		db:             db,
		dialect:        dialect,
		tableName:      defaultTableName,
		documentColumn: defaultDocumentColumn,
		keyColumn:      defaultKeyColumn,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	e.statements = sqlfilter.NewStatements(e.dialect, e.tableName, e.documentColumn, e.keyColumn)

	return e, nil
}

// Dialect returns the SQL dialect of the underlying database.
func (e *Engine) Dialect() sqlfilter.Dialect {
	return e.dialect
}

// DocumentColumn returns the column holding the JSON documents.
func (e *Engine) DocumentColumn() string {
	return e.documentColumn
}

// TableName returns the table holding the documents.
func (e *Engine) TableName() string {
	return e.tableName
}

// EnsureTable creates the document table if it does not exist yet.
func (e *Engine) EnsureTable(ctx context.Context) error {
	sqlQuery := e.statements.CreateTable()

	start := time.Now()
	_, execErr := e.db.Exec(ctx, sqlQuery)
	e.logQueryWithDuration(ctx, sqlQuery, logActionCreateTable, time.Since(start))

	if execErr != nil {
		e.logError(ctx, logMsgCreateTableFailed, execErr, logAttrTable, e.tableName)
		return e.markTimeout(errors.Join(docstore.ErrCreatingTableFailed, execErr))
	}

	e.logOperation(ctx, logMsgTableEnsured, logAttrTable, e.tableName)

	return nil
}

// Find runs filter against the document table and returns a cursor over the matching documents
// in key order. The cursor must be closed; closing it finishes the operation's span and metrics.
func (e *Engine) Find(ctx context.Context, filter sqlfilter.Filter) (docstore.Cursor, error) {
	tracer, ctx := e.startTracing(ctx, spanNameFind, operationFind)
	metrics := e.startFindMetrics(ctx)

	sqlQuery, buildErr := e.statements.Select(filter)
	if buildErr != nil {
		e.logError(ctx, logMsgBuildSelectQueryFailed, buildErr)
		metrics.recordError(errorTypeBuildQuery, 0)
		tracer.finishError(errorTypeBuildQuery, 0)

		return nil, errors.Join(docstore.ErrBuildingQueryFailed, buildErr)
	}

	start := time.Now()
	rows, queryErr := e.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	e.logQueryWithDuration(ctx, sqlQuery, logActionFind, duration)

	if queryErr != nil {
		err := e.markTimeout(errors.Join(docstore.ErrQueryingDocumentsFailed, queryErr))
		errorType := errorTypeOf(err, errorTypeDatabaseQuery)

		e.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		metrics.recordError(errorType, duration)
		tracer.finishError(errorType, duration)

		return nil, err
	}

	return &rowCursor{
		engine:  e,
		ctx:     ctx,
		rows:    rows,
		start:   start,
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

// Insert stores one encoded JSON document.
func (e *Engine) Insert(ctx context.Context, document []byte) error {
	tracer, ctx := e.startTracing(ctx, spanNameInsert, operationInsert)
	metrics := e.startInsertMetrics(ctx)

	sqlQuery, buildErr := e.statements.Insert(document)
	if buildErr != nil {
		e.logError(ctx, logMsgBuildInsertQueryFailed, buildErr)
		metrics.recordError(errorTypeBuildQuery, 0)
		tracer.finishError(errorTypeBuildQuery, 0)

		return errors.Join(docstore.ErrBuildingQueryFailed, buildErr)
	}

	start := time.Now()
	result, execErr := e.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	e.logQueryWithDuration(ctx, sqlQuery, logActionInsert, duration)

	if execErr != nil {
		err := e.markTimeout(errors.Join(docstore.ErrInsertingDocumentFailed, execErr))
		errorType := errorTypeOf(err, errorTypeDatabaseExec)

		e.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		metrics.recordError(errorType, duration)
		tracer.finishError(errorType, duration)

		return err
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		e.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		metrics.recordError(errorTypeRowsAffected, duration)
		tracer.finishError(errorTypeRowsAffected, duration)

		return errors.Join(docstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected != 1 {
		err := errors.Join(docstore.ErrInsertingDocumentFailed, fmt.Errorf("expected 1 row affected, got %d", rowsAffected))
		e.logError(ctx, logMsgDBExecFailed, err, logAttrRowsAffected, rowsAffected)
		metrics.recordError(errorTypeRowsAffected, duration)
		tracer.finishError(errorTypeRowsAffected, duration)

		return err
	}

	e.logOperation(ctx, logMsgDocumentInserted, logAttrRowsAffected, rowsAffected, logAttrDurationMS, e.toMilliseconds(duration))
	metrics.recordSuccess(rowsAffected, duration)
	tracer.finishSuccess(spanAttrRowsAffected, rowsAffected, duration)

	return nil
}

// markTimeout adds docstore.ErrTimeout to deadline and driver timeout errors.
func (e *Engine) markTimeout(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return errors.Join(docstore.ErrTimeout, err)
	}

	return err
}
