// Package oteladapters provides OpenTelemetry implementations of the docstore observability interfaces:
// a contextual logger, a metrics collector and a tracing collector. They can be passed to
// sqlengine.WithContextualLogger, sqlengine.WithMetrics and sqlengine.WithTracing.
package oteladapters
