package docstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrDriver classifies failures of the store itself: connectivity, rejected statements and
// documents that cannot be decoded.
var ErrDriver = errors.New("document store driver failed")

// ErrCancelled is returned when the caller cancelled an operation.
var ErrCancelled = errors.New("operation cancelled")

// ErrTimeout is returned when an operation ran into a deadline or a driver timeout.
var ErrTimeout = errors.New("operation timed out")

// ErrNilDriver is returned when a Repository is created without a Driver.
var ErrNilDriver = errors.New("driver must not be nil")

// ErrNilMapper is returned when a Repository is created without a Mapper.
var ErrNilMapper = errors.New("mapper must not be nil")

// ErrInvalidOption is returned when a repository option is out of range.
var ErrInvalidOption = errors.New("invalid repository option")

// ErrNilDatabaseConnection is returned when an engine is created with a nil database connection.
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// ErrEmptyTableName is returned when an empty table name is configured.
var ErrEmptyTableName = errors.New("table name must not be empty")

// ErrEmptyColumnName is returned when an empty column name is configured.
var ErrEmptyColumnName = errors.New("column name must not be empty")

// ErrQueryingDocumentsFailed is returned when the select query fails.
var ErrQueryingDocumentsFailed = errors.New("querying documents failed")

// ErrInsertingDocumentFailed is returned when the insert statement fails.
var ErrInsertingDocumentFailed = errors.New("inserting document failed")

// ErrCreatingTableFailed is returned when the table cannot be created.
var ErrCreatingTableFailed = errors.New("creating document table failed")

// ErrScanningDBRowFailed is returned when scanning a database row fails.
var ErrScanningDBRowFailed = errors.New("scanning db row failed")

// ErrBuildingQueryFailed is returned when building a query with goqu fails.
var ErrBuildingQueryFailed = errors.New("building query failed")

// ErrGettingRowsAffectedFailed is returned when the rows affected count is not available.
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")

// ErrEncodingDocumentFailed is returned when field values cannot be assembled into one document.
var ErrEncodingDocumentFailed = errors.New("encoding document failed")

// ErrDecodingDocumentFailed is returned when a stored document cannot be turned back into an entity.
var ErrDecodingDocumentFailed = errors.New("decoding document failed")

const (
	opFind   = "find"
	opInsert = "insert"
	opDecode = "decode"
)

// DriverError carries the operation during which the driver failed.
type DriverError struct {
	Op  string
	Err error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDriver, e.Op, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// Is matches ErrDriver.
func (e *DriverError) Is(target error) bool {
	return target == ErrDriver
}

// classify maps a failure reported by the driver to the error taxonomy of the façade.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, ErrTimeout):
		return err
	case errors.Is(err, context.Canceled):
		return errors.Join(ErrCancelled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Join(ErrTimeout, err)
	default:
		return &DriverError{Op: op, Err: err}
	}
}
