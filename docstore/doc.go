// Package docstore provides a typed, asynchronous repository over a JSON document store.
//
// A Repository[T] combines three collaborators:
//
//	Driver:   runs store native filters and inserts, e.g. the sqlengine Engine
//	Mapper:   converts between T and the field values of its document
//	Registry: the criteria.CodecRegistry used for both filter literals and stored documents
//
// Query translates a criteria.Criteria[T] synchronously, so unsupported types and operators are
// reported before the store is contacted, and then streams the matching entities:
//
//	stream, err := repository.Query(ctx, adultsFromUS)
//	if err != nil {
//		return err
//	}
//	for person, err := range stream.All() {
//		...
//	}
//
// Insert encodes the entity synchronously and stores it in the background; the returned
// Completion reports the outcome.
//
// Errors are classified with sentinels usable with errors.Is: ErrCancelled, ErrTimeout and
// ErrDriver (with the *DriverError detail type).
package docstore
