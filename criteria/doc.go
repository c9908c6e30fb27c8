// Package criteria provides type-checked, composable predicates over the fields of one entity type.
//
// A Criteria wraps exactly one Expression tree. Expressions are immutable values built through the
// fluent builder:
//
//	age := criteria.NewField[Person]("age", criteria.TypeInteger)
//	country := criteria.NewField[Person]("country", criteria.TypeString)
//
//	adults, err := criteria.Where(age).IsGreaterThan(criteria.Int(18))
//	fromUS, err := criteria.Where(country).IsEqualTo(criteria.String("US"))
//	c := adults.And(fromUS)
//
// Operator/type compatibility is validated while building, so an invalid predicate never reaches
// a translator. Consumers walk the tree through the Visitor contract; adding an expression variant
// adds a Visitor method and breaks every consumer at compile time.
//
// The CodecRegistry maps semantic types to JSON literal encoders and decoders. It is built once with
// BuildCodecRegistry and shared read-only afterwards.
package criteria
