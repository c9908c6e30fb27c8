package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/sqlengine"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/fixtures"
	. "github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/helper"
)

func Test_Engine_WithOpenTelemetryAdapters(t *testing.T) {
	// setup
	tracing, exporter := givenTracingCollector()
	metrics, reader := givenMetricsCollector()
	engine := GivenSQLiteEngine(t, sqlengine.WithTracing(tracing), sqlengine.WithMetrics(metrics))
	repository := GivenPersonRepository(t, engine)

	// arrange
	GivenStoredPersons(t, repository, fixtures.NewPerson("Anna", 30, "US"), fixtures.NewPerson("Bert", 16, "US"))

	// act
	persons := CollectPersons(t, context.Background(), repository, criteria.Must(criteria.Where(fixtures.PersonAge).IsGreaterThan(criteria.Int(18))))

	// assert
	require.Len(t, persons, 1)

	spanNames := make(map[string]int)
	for _, span := range exporter.GetSpans() {
		spanNames[span.Name]++
	}
	assert.Equal(t, map[string]int{"docstore.insert": 2, "docstore.find": 1}, spanNames)

	found, ok := findMetric(t, collect(t, reader), "docstore_documents_found").Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, found.DataPoints, 1)
	assert.Equal(t, float64(1), found.DataPoints[0].Value)
}
