package docstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/fixtures"
	. "github.com/AntonStoeckl/typed-criteria-docstore-go/testutil/helper"
)

func Test_Query_SQLite_AdultsFromUS(t *testing.T) {
	// setup
	ctx := context.Background()
	repository := GivenPersonRepository(t, GivenSQLiteEngine(t))

	// arrange
	anna := fixtures.NewPerson("Anna", 20, "US")
	bert := fixtures.NewPerson("Bert", 15, "US")
	GivenStoredPersons(t, repository, anna, bert)

	adultsFromUS := criteria.Must(criteria.Where(fixtures.PersonAge).IsGreaterThan(criteria.Int(18))).
		And(criteria.Must(criteria.Where(fixtures.PersonCountry).IsEqualTo(criteria.String("US"))))

	// act
	persons := CollectPersons(t, ctx, repository, adultsFromUS)

	// assert
	require.Len(t, persons, 1)
	assert.Equal(t, anna.ID, persons[0].ID)
}

func Test_Query_SQLite_RoundTripsEveryField(t *testing.T) {
	// setup
	ctx := context.Background()
	repository := GivenPersonRepository(t, GivenSQLiteEngine(t))

	// arrange
	nickname := "Annie"
	anna := fixtures.NewPerson("Anna", 30, "US", "vip", "early")
	anna.Nickname = &nickname
	anna.Balance = 1250

	GivenStoredPersons(t, repository, anna)

	// act
	persons := CollectPersons(t, ctx, repository, criteria.All[fixtures.Person]())

	// assert
	require.Len(t, persons, 1)
	found := persons[0]
	assert.Equal(t, anna.ID, found.ID)
	assert.Equal(t, anna.Name, found.Name)
	assert.Equal(t, anna.Age, found.Age)
	assert.Equal(t, anna.Country, found.Country)
	assert.Equal(t, anna.Tags, found.Tags)
	assert.Equal(t, anna.Balance, found.Balance)
	assert.True(t, anna.Birthday.Equal(found.Birthday))
	assert.Equal(t, anna.City, found.City)
	assert.Equal(t, anna.Active, found.Active)
	require.NotNil(t, found.Nickname)
	assert.Equal(t, nickname, *found.Nickname)
}

func Test_Query_SQLite_Operators(t *testing.T) {
	// setup
	ctx := context.Background()
	repository := GivenPersonRepository(t, GivenSQLiteEngine(t))

	// arrange
	anna := fixtures.NewPerson("Anna", 30, "US", "vip")
	bert := fixtures.NewPerson("Bert", 16, "DE")
	carl := fixtures.NewPerson("Carl", 45, "FR", "vip", "early")
	carl.City = "Paris"
	carl.Balance = 99
	carl.Birthday = time.Date(1980, 5, 6, 0, 0, 0, 0, time.UTC)
	nickname := "Bertie"
	bert.Nickname = &nickname

	GivenStoredPersons(t, repository, anna, bert, carl)

	tests := []struct {
		name     string
		criteria criteria.Criteria[fixtures.Person]
		expected []string
	}{
		{
			name:     "match all",
			criteria: criteria.All[fixtures.Person](),
			expected: []string{"Anna", "Bert", "Carl"},
		},
		{
			name:     "equal",
			criteria: criteria.Must(criteria.Where(fixtures.PersonCountry).IsEqualTo(criteria.String("DE"))),
			expected: []string{"Bert"},
		},
		{
			name:     "not equal",
			criteria: criteria.Must(criteria.Where(fixtures.PersonCountry).IsNotEqualTo(criteria.String("DE"))),
			expected: []string{"Anna", "Carl"},
		},
		{
			name:     "greater or equal",
			criteria: criteria.Must(criteria.Where(fixtures.PersonAge).IsGreaterThanOrEqualTo(criteria.Int(30))),
			expected: []string{"Anna", "Carl"},
		},
		{
			name:     "less",
			criteria: criteria.Must(criteria.Where(fixtures.PersonAge).IsLessThan(criteria.Int(30))),
			expected: []string{"Bert"},
		},
		{
			name:     "less or equal on a date",
			criteria: criteria.Must(criteria.Where(fixtures.PersonBirthday).IsLessThanOrEqualTo(criteria.Date(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)))),
			expected: []string{"Carl"},
		},
		{
			name:     "in",
			criteria: criteria.Must(criteria.Where(fixtures.PersonCountry).IsIn(criteria.String("US"), criteria.String("FR"))),
			expected: []string{"Anna", "Carl"},
		},
		{
			name:     "not in",
			criteria: criteria.Must(criteria.Where(fixtures.PersonCountry).IsNotIn(criteria.String("US"), criteria.String("FR"))),
			expected: []string{"Bert"},
		},
		{
			name:     "contains on a repeated field",
			criteria: criteria.Must(criteria.Where(fixtures.PersonTags).Contains(criteria.String("early"))),
			expected: []string{"Carl"},
		},
		{
			name:     "contains on a string",
			criteria: criteria.Must(criteria.Where(fixtures.PersonName).Contains(criteria.String("er"))),
			expected: []string{"Bert"},
		},
		{
			name:     "nested path",
			criteria: criteria.Must(criteria.Where(fixtures.PersonCity).IsEqualTo(criteria.String("Paris"))),
			expected: []string{"Carl"},
		},
		{
			name:     "user defined type",
			criteria: criteria.Must(criteria.Where(fixtures.PersonBalance).IsLessThan(fixtures.Money(100))),
			expected: []string{"Carl"},
		},
		{
			name:     "is null",
			criteria: criteria.Must(criteria.Where(fixtures.PersonNickname).IsNull()),
			expected: []string{"Anna", "Carl"},
		},
		{
			name:     "less skips null values",
			criteria: criteria.Must(criteria.Where(fixtures.PersonNickname).IsLessThan(criteria.String("M"))),
			expected: []string{"Bert"},
		},
		{
			name:     "is not null",
			criteria: criteria.Must(criteria.Where(fixtures.PersonNickname).IsNotNull()),
			expected: []string{"Bert"},
		},
		{
			name: "or with not",
			criteria: criteria.Must(criteria.Where(fixtures.PersonAge).IsLessThan(criteria.Int(18))).
				Or(criteria.Must(criteria.Where(fixtures.PersonTags).Contains(criteria.String("vip"))).Not()),
			expected: []string{"Bert"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// act
			persons := CollectPersons(t, ctx, repository, tt.criteria)

			// assert
			names := make([]string, 0, len(persons))
			for _, person := range persons {
				names = append(names, person.Name)
			}

			assert.Equal(t, tt.expected, names)
		})
	}
}

func Test_Query_SQLite_CancelReleasesConnection(t *testing.T) {
	// setup
	ctx := context.Background()
	repository := GivenPersonRepository(t, GivenSQLiteEngine(t))

	// arrange
	for i := range 20 {
		GivenStoredPersons(t, repository, fixtures.NewPerson("Person", int64(i), "US"))
	}

	stream, err := repository.Query(ctx, criteria.All[fixtures.Person]())
	require.NoError(t, err)
	require.True(t, stream.Next())

	// act
	stream.Cancel()

	// assert
	assert.ErrorIs(t, stream.Err(), docstore.ErrCancelled)
	persons := CollectPersons(t, ctx, repository, criteria.All[fixtures.Person]())
	assert.Len(t, persons, 20)
}
