package docstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/sqlfilter"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/fixtures"
	. "github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/helper"
)

func Test_NewRepository_RejectsMissingCollaborators(t *testing.T) {
	_, err := docstore.NewRepository[fixtures.Person](nil, fixtures.PersonMapper{}, fixtures.Registry())
	assert.ErrorIs(t, err, docstore.ErrNilDriver)

	_, err = docstore.NewRepository[fixtures.Person](newFakeDriver(0), nil, fixtures.Registry())
	assert.ErrorIs(t, err, docstore.ErrNilMapper)
}

func Test_NewRepository_RejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		option docstore.RepositoryOption
	}{
		{name: "zero filter cache size", option: docstore.WithFilterCache(0)},
		{name: "negative filter cache size", option: docstore.WithFilterCache(-1)},
		{name: "negative prefetch", option: docstore.WithPrefetch(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// act
			_, err := docstore.NewRepository[fixtures.Person](
				newFakeDriver(0),
				fixtures.PersonMapper{},
				fixtures.Registry(),
				tt.option,
			)

			// assert
			assert.ErrorIs(t, err, docstore.ErrInvalidOption)
		})
	}
}

func Test_Query_UnsupportedOperatorFailsBeforeDriver(t *testing.T) {
	// setup
	driver := newFakeDriver(10)
	repository := GivenPersonRepository(t, driver)

	// arrange
	namesStartingWithA := criteria.Must(criteria.Where(fixtures.PersonName).Matches("^A"))

	// act
	stream, err := repository.Query(context.Background(), namesStartingWithA)

	// assert
	assert.Nil(t, stream)

	var unsupported *criteria.UnsupportedOperatorError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, criteria.OpMatches, unsupported.Operator)
	assert.Equal(t, "sqlite", unsupported.Store)
	assert.Equal(t, int32(0), driver.findCalls.Load())
}

func Test_Query_UnregisteredTypeFailsBeforeDriver(t *testing.T) {
	// setup
	driver := newFakeDriver(10)
	repository := GivenPersonRepository(t, driver)

	// arrange
	withPoints := criteria.Must(criteria.Where(fixtures.PersonPoints).IsEqualTo(criteria.Value(fixtures.TypeUnregistered, int64(5))))

	// act
	_, err := repository.Query(context.Background(), withPoints)

	// assert
	var unsupported *criteria.UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, fixtures.TypeUnregistered, unsupported.Type)
	assert.Equal(t, int32(0), driver.findCalls.Load())
}

func Test_Query_FilterCacheServesRepeatedCriteria(t *testing.T) {
	// setup
	logHandler := NewLogHandlerSpy(false)
	driver := newFakeDriver(0)
	repository := GivenPersonRepository(t, driver, docstore.WithFilterCache(8), docstore.WithLogger(logHandler.Logger()))

	// arrange
	adults := criteria.Must(criteria.Where(fixtures.PersonAge).IsGreaterThan(criteria.Int(18)))
	first, err := repository.Query(context.Background(), adults)
	require.NoError(t, err)
	_, err = first.Collect()
	require.NoError(t, err)
	assert.False(t, logHandler.HasDebugLogWithMessage("translated filter served from cache").Assert())

	// act
	sameAdults := criteria.Must(criteria.Where(fixtures.PersonAge).IsGreaterThan(criteria.Int(18)))
	second, err := repository.Query(context.Background(), sameAdults)
	require.NoError(t, err)
	_, err = second.Collect()
	require.NoError(t, err)

	// assert
	assert.True(t, logHandler.HasDebugLogWithMessage("translated filter served from cache").Assert())
	assert.Equal(t, int32(2), driver.findCalls.Load())
}

func Test_Query_FilterCacheKeepsCriteriaWithEqualTextApart(t *testing.T) {
	// setup
	repository := GivenPersonRepository(t, newFakeDriver(0), docstore.WithFilterCache(8))
	statements := sqlfilter.NewStatements(sqlfilter.SQLite, "documents", "doc", "id")

	// arrange
	repeatedTags := criteria.NewRepeatedField[fixtures.Person]("tags", criteria.TypeString)
	bracketedTags := criteria.NewField[fixtures.Person]("tags[]", criteria.TypeString)
	taggedX := criteria.Must(criteria.Where(repeatedTags).Contains(criteria.String("x")))
	bracketedX := criteria.Must(criteria.Where(bracketedTags).Contains(criteria.String("x")))
	require.Equal(t, taggedX.String(), bracketedX.String())

	// act
	first, err := repository.Translate(taggedX)
	require.NoError(t, err)
	second, err := repository.Translate(bracketedX)
	require.NoError(t, err)

	// assert
	firstSQL, err := statements.Select(first)
	require.NoError(t, err)
	secondSQL, err := statements.Select(second)
	require.NoError(t, err)

	assert.Contains(t, firstSQL, "json_each")
	assert.NotContains(t, secondSQL, "json_each")
}

func Test_Translate_IsDeterministic(t *testing.T) {
	// setup
	repository := GivenPersonRepository(t, newFakeDriver(0))
	adultsFromUS := criteria.Must(criteria.Where(fixtures.PersonAge).IsGreaterThan(criteria.Int(18))).
		And(criteria.Must(criteria.Where(fixtures.PersonCountry).IsEqualTo(criteria.String("US"))))

	// act
	first, err1 := repository.Translate(adultsFromUS)
	second, err2 := repository.Translate(adultsFromUS)

	// assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.False(t, first.IsMatchAll())
}

func Test_Insert_UnregisteredTypeFailsBeforeDriver(t *testing.T) {
	// setup
	driver := newFakeDriver(0)
	repository, err := docstore.NewRepository[fixtures.Person](
		driver,
		fixtures.UnregisteredMapper{},
		fixtures.Registry(),
	)
	require.NoError(t, err)

	// act
	completion, err := repository.Insert(context.Background(), fixtures.NewPerson("Anna", 30, "US"))

	// assert
	assert.Nil(t, completion)

	var unsupported *criteria.UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, fixtures.TypeUnregistered, unsupported.Type)
	assert.Equal(t, "points", unsupported.Path.String())
	assert.Equal(t, int32(0), driver.insertCalls.Load())
}

// homeMapper additionally stores the city as an object field.
type homeMapper struct {
	fixtures.PersonMapper
}

func (m homeMapper) ToValues(p fixtures.Person) []docstore.FieldValue {
	home := criteria.Object(criteria.Member{Name: "city", Value: criteria.String(p.City)})

	return append(m.PersonMapper.ToValues(p), docstore.Set("home", home))
}

func Test_Insert_ObjectFieldWithoutObjectCodecFailsBeforeDriver(t *testing.T) {
	// setup
	driver := newFakeDriver(0)
	repository, err := docstore.NewRepository[fixtures.Person](driver, homeMapper{}, fixtures.Registry())
	require.NoError(t, err)

	// act
	completion, err := repository.Insert(context.Background(), fixtures.NewPerson("Anna", 30, "US"))

	// assert
	assert.Nil(t, completion)

	var unsupported *criteria.UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, criteria.TypeObject, unsupported.Type)
	assert.Equal(t, "home", unsupported.Path.String())
	assert.Equal(t, int32(0), driver.insertCalls.Load())
}

func Test_Insert_StoresNestedSortedDocument(t *testing.T) {
	// setup
	driver := newFakeDriver(0)
	repository := GivenPersonRepository(t, driver)

	// arrange
	person := fixtures.NewPerson("Anna", 30, "US", "vip", "early")
	person.ID = uuid.MustParse("0190b6c4-1a2b-7c3d-8e4f-001122334455")
	person.Balance = 1250

	// act
	completion, err := repository.Insert(context.Background(), person)
	require.NoError(t, err)

	// assert
	require.NoError(t, completion.Wait())
	documents := driver.insertedDocuments()
	require.Len(t, documents, 1)
	assert.Equal(
		t,
		`{"active":true,"address":{"city":"Berlin"},"age":30,"balance":1250,`+
			`"birthday":"2000-01-02T03:04:05.000000000Z","country":"US",`+
			`"id":"0190b6c4-1a2b-7c3d-8e4f-001122334455","name":"Anna","nickname":null,"tags":["vip","early"]}`,
		string(documents[0]),
	)
}

func Test_Insert_DriverFailuresAreClassified(t *testing.T) {
	tests := []struct {
		name        string
		driverErr   error
		expectedErr error
	}{
		{name: "cancelled", driverErr: context.Canceled, expectedErr: docstore.ErrCancelled},
		{name: "deadline", driverErr: context.DeadlineExceeded, expectedErr: docstore.ErrTimeout},
		{name: "already classified timeout", driverErr: errors.Join(docstore.ErrTimeout, errors.New("i/o")), expectedErr: docstore.ErrTimeout},
		{name: "store failure", driverErr: docstore.ErrInsertingDocumentFailed, expectedErr: docstore.ErrDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// setup
			driver := newFakeDriver(0)
			driver.insertErr = tt.driverErr
			repository := GivenPersonRepository(t, driver)

			// act
			completion, err := repository.Insert(context.Background(), fixtures.NewPerson("Anna", 30, "US"))
			require.NoError(t, err)

			// assert
			assert.ErrorIs(t, completion.Wait(), tt.expectedErr)
			assert.ErrorIs(t, completion.Err(), tt.driverErr)
		})
	}
}

func Test_Insert_DriverErrorNamesOperation(t *testing.T) {
	// setup
	driver := newFakeDriver(0)
	driver.insertErr = assert.AnError
	repository := GivenPersonRepository(t, driver)

	// act
	completion, err := repository.Insert(context.Background(), fixtures.NewPerson("Anna", 30, "US"))
	require.NoError(t, err)

	// assert
	var driverErr *docstore.DriverError
	require.ErrorAs(t, completion.Wait(), &driverErr)
	assert.Equal(t, "insert", driverErr.Op)
	assert.ErrorIs(t, driverErr, docstore.ErrDriver)
}

func Test_Completion_DoneIsClosedAfterInsert(t *testing.T) {
	// setup
	repository := GivenPersonRepository(t, newFakeDriver(0))

	// act
	completion, err := repository.Insert(context.Background(), fixtures.NewPerson("Anna", 30, "US"))
	require.NoError(t, err)

	// assert
	select {
	case <-completion.Done():
	case <-time.After(time.Second):
		t.Fatal("insert did not complete")
	}

	assert.NoError(t, completion.Err())
}
