// Command people stores a few people in an in-memory SQLite document table and streams the
// adults living in the US back out.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver with JSON1

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore/sqlengine"
)

type person struct {
	ID      uuid.UUID
	Name    string
	Age     int64
	Country string
}

var (
	personID      = criteria.NewField[person]("id", criteria.TypeIdentifier)
	personName    = criteria.NewField[person]("name", criteria.TypeString)
	personAge     = criteria.NewField[person]("age", criteria.TypeInteger)
	personCountry = criteria.NewField[person]("country", criteria.TypeString)
)

type personMapper struct{}

func (personMapper) Fields() []criteria.Attribute {
	return []criteria.Attribute{
		personID.Attribute(),
		personName.Attribute(),
		personAge.Attribute(),
		personCountry.Attribute(),
	}
}

func (personMapper) ToValues(p person) []docstore.FieldValue {
	return []docstore.FieldValue{
		docstore.Set("id", criteria.ID(p.ID)),
		docstore.Set("name", criteria.String(p.Name)),
		docstore.Set("age", criteria.Int(p.Age)),
		docstore.Set("country", criteria.String(p.Country)),
	}
}

func (personMapper) FromDocument(values docstore.Values) (person, error) {
	var p person
	p.ID, _ = docstore.ValueAs[uuid.UUID](values, "id")
	p.Name, _ = docstore.ValueAs[string](values, "name")
	p.Age, _ = docstore.ValueAs[int64](values, "age")
	p.Country, _ = docstore.ValueAs[string](values, "country")

	return p, nil
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	engine, err := sqlengine.NewSQLiteEngine(db, sqlengine.WithTableName("people"), sqlengine.WithLogger(logger))
	if err != nil {
		return err
	}

	if err = engine.EnsureTable(ctx); err != nil {
		return err
	}

	repository, err := docstore.NewRepository[person](
		engine,
		personMapper{},
		criteria.DefaultCodecRegistry(),
		docstore.WithFilterCache(16),
		docstore.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	for _, p := range []person{
		{ID: uuid.New(), Name: "Anna", Age: 34, Country: "US"},
		{ID: uuid.New(), Name: "Bert", Age: 17, Country: "US"},
		{ID: uuid.New(), Name: "Chloé", Age: 52, Country: "FR"},
	} {
		completion, insertErr := repository.Insert(ctx, p)
		if insertErr != nil {
			return insertErr
		}

		if insertErr = completion.Wait(); insertErr != nil {
			return insertErr
		}
	}

	adultsFromUS := criteria.And(
		criteria.Must(criteria.Where(personAge).IsGreaterThan(criteria.Int(18))),
		criteria.Must(criteria.Where(personCountry).IsEqualTo(criteria.String("US"))),
	)

	stream, err := repository.Query(ctx, adultsFromUS)
	if err != nil {
		return err
	}

	for p, iterErr := range stream.All() {
		if iterErr != nil {
			return iterErr
		}

		fmt.Printf("%s (%d, %s)\n", p.Name, p.Age, p.Country)
	}

	return nil
}
