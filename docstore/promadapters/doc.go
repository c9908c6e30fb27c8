// Package promadapters provides a Prometheus implementation of docstore.MetricsCollector.
package promadapters
