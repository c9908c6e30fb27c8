// Package helper provides test doubles and arrange helpers for the document store tests.
//
// The spies capture logging, metrics and tracing calls so that engine instrumentation can be asserted
// with fluent matchers, e.g. HasDebugLogWithMessage(msg).WithDurationMS().Assert().
package helper
