package docstore

import "context"

// ConsistencyLevel tells an engine which database may serve a read.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary database, so a query sees every insert that
	// completed before it. This is the default.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica database. Documents inserted shortly
	// before the query may be missing from the result.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key holding the consistency level of a query.
const ConsistencyLevelKey contextKey = "docstore.consistency_level"

// WithStrongConsistency returns a context that routes queries to the primary database.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows queries to be served by a replica.
//
// Example usage:
//
//	ctx = docstore.WithEventualConsistency(ctx)
//	stream, err := repository.Query(ctx, adultsFromUS)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context, StrongConsistency if none is set.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
