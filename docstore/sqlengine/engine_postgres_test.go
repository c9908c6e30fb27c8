package sqlengine_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/sqlengine"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/config"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/fixtures"
	. "github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/helper"
)

func givenPostgresEngines(t *testing.T, tableName string) map[string]*sqlengine.Engine {
	t.Helper()

	pool := GivenPostgresPGXPool(t)
	dsn, _ := config.PostgresDSN()
	ctx := context.Background()

	sqlDB, err := config.PostgresSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	sqlxDB, err := config.PostgresSQLX(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlxDB.Close() })

	pgxEngine, err := sqlengine.NewPostgresEngineFromPGXPool(pool, sqlengine.WithTableName(tableName))
	require.NoError(t, err)
	require.NoError(t, pgxEngine.EnsureTable(ctx))
	CleanUpTable(t, pool, pgxEngine)

	sqlEngine, err := sqlengine.NewPostgresEngineFromSQLDB(sqlDB, sqlengine.WithTableName(tableName))
	require.NoError(t, err)

	sqlxEngine, err := sqlengine.NewPostgresEngineFromSQLX(sqlxDB, sqlengine.WithTableName(tableName))
	require.NoError(t, err)

	return map[string]*sqlengine.Engine{
		"pgx.Pool": pgxEngine,
		"sql.DB":   sqlEngine,
		"sqlx.DB":  sqlxEngine,
	}
}

func Test_PostgresEngine_QueriesThroughEveryAdapter(t *testing.T) {
	tableName := fmt.Sprintf("documents_test_%d", time.Now().UnixNano())

	for name, engine := range givenPostgresEngines(t, tableName) {
		t.Run(name, func(t *testing.T) {
			// setup
			ctx := context.Background()
			repository := GivenPersonRepository(t, engine)

			// arrange
			anna := fixtures.NewPerson("Anna", 30, "US", "vip")
			bert := fixtures.NewPerson("Bert", 16, "US")
			GivenStoredPersons(t, repository, anna, bert)

			vipAdultsNamedA := criteria.Must(criteria.Where(fixtures.PersonAge).IsGreaterThan(criteria.Int(18))).
				And(criteria.Must(criteria.Where(fixtures.PersonTags).Contains(criteria.String("vip")))).
				And(criteria.Must(criteria.Where(fixtures.PersonName).Matches("^A")))

			// act
			persons := CollectPersons(t, ctx, repository, vipAdultsNamedA)

			// assert
			require.NotEmpty(t, persons)
			for _, person := range persons {
				assert.Equal(t, "Anna", person.Name)
			}
		})
	}
}

func Test_PostgresEngine_NullSemantics(t *testing.T) {
	// setup
	ctx := context.Background()
	pool := GivenPostgresPGXPool(t)
	engine, err := sqlengine.NewPostgresEngineFromPGXPool(pool, sqlengine.WithTableName("documents_null_test"))
	require.NoError(t, err)
	require.NoError(t, engine.EnsureTable(ctx))
	CleanUpTable(t, pool, engine)
	repository := GivenPersonRepository(t, engine)

	// arrange
	nickname := "Bertie"
	anna := fixtures.NewPerson("Anna", 30, "US")
	bert := fixtures.NewPerson("Bert", 16, "US")
	bert.Nickname = &nickname
	GivenStoredPersons(t, repository, anna, bert)

	// act
	withoutNickname := CollectPersons(t, ctx, repository, criteria.Must(criteria.Where(fixtures.PersonNickname).IsNull()))
	withNickname := CollectPersons(t, ctx, repository, criteria.Must(criteria.Where(fixtures.PersonNickname).IsNotNull()))

	// assert
	require.Len(t, withoutNickname, 1)
	assert.Equal(t, anna.ID, withoutNickname[0].ID)
	require.Len(t, withNickname, 1)
	assert.Equal(t, bert.ID, withNickname[0].ID)
}

func Test_PostgresEngine_OrderingSkipsNullValues(t *testing.T) {
	// setup
	ctx := context.Background()
	pool := GivenPostgresPGXPool(t)
	engine, err := sqlengine.NewPostgresEngineFromPGXPool(pool, sqlengine.WithTableName("documents_ordering_test"))
	require.NoError(t, err)
	require.NoError(t, engine.EnsureTable(ctx))
	CleanUpTable(t, pool, engine)
	repository := GivenPersonRepository(t, engine)

	// arrange
	nickname := "Bertie"
	anna := fixtures.NewPerson("Anna", 30, "US")
	bert := fixtures.NewPerson("Bert", 16, "US")
	bert.Nickname = &nickname
	GivenStoredPersons(t, repository, anna, bert)

	// act
	below := CollectPersons(t, ctx, repository, criteria.Must(criteria.Where(fixtures.PersonNickname).IsLessThan(criteria.String("M"))))
	atOrBelow := CollectPersons(t, ctx, repository, criteria.Must(criteria.Where(fixtures.PersonNickname).IsLessThanOrEqualTo(criteria.String("Bertie"))))

	// assert
	require.Len(t, below, 1)
	assert.Equal(t, bert.ID, below[0].ID)
	require.Len(t, atOrBelow, 1)
	assert.Equal(t, bert.ID, atOrBelow[0].ID)
}

func Test_PostgresEngine_ReplicaServesEventualConsistencyReads(t *testing.T) {
	// setup
	ctx := context.Background()
	primary := GivenPostgresPGXPool(t)
	engine, err := sqlengine.NewPostgresEngineFromPGXPoolWithReplica(primary, primary, sqlengine.WithTableName("documents_replica_test"))
	require.NoError(t, err)
	require.NoError(t, engine.EnsureTable(ctx))
	CleanUpTable(t, primary, engine)
	repository := GivenPersonRepository(t, engine)

	// arrange
	GivenStoredPersons(t, repository, fixtures.NewPerson("Anna", 30, "US"))

	// act
	persons := CollectPersons(t, docstore.WithEventualConsistency(ctx), repository, criteria.All[fixtures.Person]())

	// assert
	assert.Len(t, persons, 1)
}
