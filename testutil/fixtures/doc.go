// Package fixtures provides a Person entity with its fields, mapper and codec registry
// for document store tests.
package fixtures
