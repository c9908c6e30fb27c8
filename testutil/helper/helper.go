package helper

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/sqlengine"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/config"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/fixtures"
)

// GivenSQLiteEngine returns an Engine over a fresh in-memory database with its table already created.
func GivenSQLiteEngine(t testing.TB, options ...sqlengine.Option) *sqlengine.Engine {
	t.Helper()

	db, err := config.SQLiteInMemory()
	require.NoError(t, err, "error in arranging test data")
	t.Cleanup(func() { _ = db.Close() })

	engine, err := sqlengine.NewSQLiteEngine(db, options...)
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, engine.EnsureTable(context.Background()), "error in arranging test data")

	return engine
}

// GivenPostgresPGXPool connects to the configured test database or skips the test.
func GivenPostgresPGXPool(t testing.TB) *pgxpool.Pool {
	t.Helper()

	dsn, ok := config.PostgresDSN()
	if !ok {
		t.Skip("no postgres test database configured")
	}

	poolConfig, err := config.PostgresPGXPoolConfig(dsn)
	require.NoError(t, err, "error in arranging test data")

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	require.NoError(t, err, "error in arranging test data")
	t.Cleanup(pool.Close)

	return pool
}

// CleanUpTable removes all documents from the table of a Postgres engine.
func CleanUpTable(t testing.TB, pool *pgxpool.Pool, engine *sqlengine.Engine) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE "+engine.TableName()+" RESTART IDENTITY")
	require.NoError(t, err, "error in cleaning up test data")
}

// GivenPersonRepository returns a Repository of fixtures.Person over driver.
func GivenPersonRepository(
	t testing.TB,
	driver docstore.Driver,
	options ...docstore.RepositoryOption,
) *docstore.Repository[fixtures.Person] {

	t.Helper()

	repository, err := docstore.NewRepository[fixtures.Person](driver, fixtures.PersonMapper{}, fixtures.Registry(), options...)
	require.NoError(t, err, "error in arranging test data")

	return repository
}

// GivenStoredPersons inserts persons in the given order and waits for every insert to complete.
func GivenStoredPersons(t testing.TB, repository *docstore.Repository[fixtures.Person], persons ...fixtures.Person) {
	t.Helper()

	for _, person := range persons {
		completion, err := repository.Insert(context.Background(), person)
		require.NoError(t, err, "error in arranging test data")
		require.NoError(t, completion.Wait(), "error in arranging test data")
	}
}

// CollectPersons drains a query and returns the found persons.
func CollectPersons(
	t testing.TB,
	ctx context.Context,
	repository *docstore.Repository[fixtures.Person],
	c criteria.Criteria[fixtures.Person],
) []fixtures.Person {

	t.Helper()

	stream, err := repository.Query(ctx, c)
	require.NoError(t, err)

	persons, err := stream.Collect()
	require.NoError(t, err)

	return persons
}
