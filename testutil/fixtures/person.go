package fixtures

import (
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
)

// TypeMoney is a user defined semantic type stored as integer cents.
const TypeMoney criteria.SemanticType = "money"

// TypeUnregistered is a semantic type no registry in this package knows.
const TypeUnregistered criteria.SemanticType = "loyalty_points"

// Person is the test entity.
type Person struct {
	ID        uuid.UUID
	Name      string
	Age       int64
	Country   string
	Tags      []string
	Balance   int64 // cents
	Birthday  time.Time
	City      string
	Active    bool
	Nickname  *string
	Points    int64 // only stored by UnregisteredMapper
	HasPoints bool
}

// Fields of Person.
var (
	PersonID       = criteria.NewField[Person]("id", criteria.TypeIdentifier)
	PersonName     = criteria.NewField[Person]("name", criteria.TypeString)
	PersonAge      = criteria.NewField[Person]("age", criteria.TypeInteger)
	PersonCountry  = criteria.NewField[Person]("country", criteria.TypeString)
	PersonTags     = criteria.NewRepeatedField[Person]("tags", criteria.TypeString)
	PersonBalance  = criteria.NewField[Person]("balance", TypeMoney)
	PersonBirthday = criteria.NewField[Person]("birthday", criteria.TypeDate)
	PersonCity     = criteria.NewField[Person]("address.city", criteria.TypeString)
	PersonActive   = criteria.NewField[Person]("active", criteria.TypeBoolean)
	PersonNickname = criteria.NewField[Person]("nickname", criteria.TypeString)
	PersonPoints   = criteria.NewField[Person]("points", TypeUnregistered)
)

// MoneyCodec stores cents as a JSON number.
var MoneyCodec = criteria.Codec{
	Encode: func(value criteria.Constant) ([]byte, error) {
		cents, ok := value.Value().(int64)
		if !ok {
			return nil, errors.New("money needs int64 cents")
		}

		return []byte(strconv.FormatInt(cents, 10)), nil
	},
	Decode: func(raw []byte) (criteria.Constant, error) {
		cents, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return criteria.Constant{}, err
		}

		return Money(cents), nil
	},
}

// Money wraps cents into a constant of TypeMoney.
func Money(cents int64) criteria.Constant {
	return criteria.Value(TypeMoney, cents)
}

// Registry returns the default codecs plus MoneyCodec.
func Registry() criteria.CodecRegistry {
	return criteria.BuildCodecRegistry().WithDefaults().Register(TypeMoney, MoneyCodec).Finalize()
}

// PersonMapper maps Person to and from its document.
type PersonMapper struct{}

// Fields implements docstore.Mapper.
func (PersonMapper) Fields() []criteria.Attribute {
	return []criteria.Attribute{
		PersonID.Attribute(),
		PersonName.Attribute(),
		PersonAge.Attribute(),
		PersonCountry.Attribute(),
		PersonTags.Attribute(),
		PersonBalance.Attribute(),
		PersonBirthday.Attribute(),
		PersonCity.Attribute(),
		PersonActive.Attribute(),
		PersonNickname.Attribute(),
	}
}

// ToValues implements docstore.Mapper.
func (PersonMapper) ToValues(p Person) []docstore.FieldValue {
	nickname := criteria.Null()
	if p.Nickname != nil {
		nickname = criteria.String(*p.Nickname)
	}

	return []docstore.FieldValue{
		docstore.Set("id", criteria.ID(p.ID)),
		docstore.Set("name", criteria.String(p.Name)),
		docstore.Set("age", criteria.Int(p.Age)),
		docstore.Set("country", criteria.String(p.Country)),
		docstore.Set("tags", criteria.Strings(p.Tags...)),
		docstore.Set("balance", Money(p.Balance)),
		docstore.Set("birthday", criteria.Date(p.Birthday)),
		docstore.Set("address.city", criteria.String(p.City)),
		docstore.Set("active", criteria.Bool(p.Active)),
		docstore.Set("nickname", nickname),
	}
}

// FromDocument implements docstore.Mapper.
func (PersonMapper) FromDocument(values docstore.Values) (Person, error) {
	id, ok := docstore.ValueAs[uuid.UUID](values, "id")
	if !ok {
		return Person{}, errors.New("person without id")
	}

	p := Person{ID: id}
	p.Name, _ = docstore.ValueAs[string](values, "name")
	p.Age, _ = docstore.ValueAs[int64](values, "age")
	p.Country, _ = docstore.ValueAs[string](values, "country")
	p.Tags, _ = docstore.ListAs[string](values, "tags")
	p.Balance, _ = docstore.ValueAs[int64](values, "balance")
	p.Birthday, _ = docstore.ValueAs[time.Time](values, "birthday")
	p.City, _ = docstore.ValueAs[string](values, "address.city")
	p.Active, _ = docstore.ValueAs[bool](values, "active")

	if nickname, found := docstore.ValueAs[string](values, "nickname"); found {
		p.Nickname = &nickname
	}

	return p, nil
}

// UnregisteredMapper additionally stores Points with a semantic type no registry knows.
type UnregisteredMapper struct {
	PersonMapper
}

// ToValues implements docstore.Mapper.
func (m UnregisteredMapper) ToValues(p Person) []docstore.FieldValue {
	return append(m.PersonMapper.ToValues(p), docstore.Set("points", criteria.Value(TypeUnregistered, p.Points)))
}

// NewPerson creates a Person with a fresh ID.
func NewPerson(name string, age int64, country string, tags ...string) Person {
	return Person{
		ID:       uuid.New(),
		Name:     name,
		Age:      age,
		Country:  country,
		Tags:     tags,
		Balance:  10_000,
		Birthday: time.Date(2000, 1, 2, 3, 4, 5, 0, time.UTC),
		City:     "Berlin",
		Active:   true,
	}
}
