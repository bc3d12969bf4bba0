package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gryroach/theater-search-etl/internal/domain"
)

func TestAssembler_AssembleWorks(t *testing.T) {
	db, mock := newMockDB(t)
	assembler := NewAssembler(db)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	modified := created.Add(time.Hour)

	mock.ExpectQuery("SELECT id, title, description, rating, type, created, modified FROM content.film_work").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "rating", "type", "created", "modified"}).
			AddRow(testWorkID, "Inception", "a dream heist", 8.8, "movie", created, modified))

	mock.ExpectQuery("SELECT pfw.film_work_id, p.id AS person_id, p.full_name AS person_name, pfw.role").
		WillReturnRows(sqlmock.NewRows([]string{"film_work_id", "person_id", "person_name", "role"}).
			AddRow(testWorkID, testPersonID, "Christopher Nolan", "director").
			AddRow(testWorkID, testPersonID, "Christopher Nolan", "writer"))

	mock.ExpectQuery("SELECT gfw.film_work_id, g.id AS genre_id, g.name AS genre_name").
		WillReturnRows(sqlmock.NewRows([]string{"film_work_id", "genre_id", "genre_name"}).
			AddRow(testWorkID, testGenreID, "Sci-Fi"))

	works, err := assembler.AssembleWorks(context.Background(), []string{testWorkID})
	require.NoError(t, err)
	require.Len(t, works, 1)

	work := works[0]
	assert.Equal(t, testWorkID, work.ID)
	assert.Equal(t, "Inception", work.Title)
	require.NotNil(t, work.Description)
	assert.Equal(t, "a dream heist", *work.Description)
	require.NotNil(t, work.Rating)
	assert.InDelta(t, 8.8, *work.Rating, 0.001)
	assert.Equal(t, modified, work.Modified)

	require.Len(t, work.Persons, 2)
	assert.Equal(t, domain.WorkPerson{ID: testPersonID, Name: "Christopher Nolan", Role: "director"}, work.Persons[0])
	assert.Equal(t, "writer", work.Persons[1].Role)

	require.Len(t, work.Genres, 1)
	assert.Equal(t, domain.WorkGenre{ID: testGenreID, Name: "Sci-Fi"}, work.Genres[0])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssembler_AssembleWorks_NoRelations(t *testing.T) {
	db, mock := newMockDB(t)
	assembler := NewAssembler(db)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, title, description, rating, type, created, modified FROM content.film_work").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "rating", "type", "created", "modified"}).
			AddRow(testWorkID, "Orphan Work", nil, nil, "movie", created, created))

	mock.ExpectQuery("SELECT pfw.film_work_id").
		WillReturnRows(sqlmock.NewRows([]string{"film_work_id", "person_id", "person_name", "role"}))

	mock.ExpectQuery("SELECT gfw.film_work_id").
		WillReturnRows(sqlmock.NewRows([]string{"film_work_id", "genre_id", "genre_name"}))

	works, err := assembler.AssembleWorks(context.Background(), []string{testWorkID})
	require.NoError(t, err)
	require.Len(t, works, 1)

	work := works[0]
	assert.Nil(t, work.Description)
	assert.Nil(t, work.Rating)
	assert.NotNil(t, work.Persons)
	assert.Empty(t, work.Persons)
	assert.NotNil(t, work.Genres)
	assert.Empty(t, work.Genres)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssembler_AssembleWorks_EmptyInput(t *testing.T) {
	db, mock := newMockDB(t)
	assembler := NewAssembler(db)

	works, err := assembler.AssembleWorks(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, works)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssembler_PersonsWithFilms_MergesRoles(t *testing.T) {
	db, mock := newMockDB(t)
	assembler := NewAssembler(db)

	mock.ExpectQuery("SELECT id, full_name FROM content.person").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).
			AddRow(testPersonID, "Christopher Nolan"))

	mock.ExpectQuery("SELECT pfw.person_id, fw.id AS film_id, fw.title, fw.rating, pfw.role").
		WillReturnRows(sqlmock.NewRows([]string{"person_id", "film_id", "title", "rating", "role"}).
			AddRow(testPersonID, testWorkID, "Inception", 8.8, "director").
			AddRow(testPersonID, testWorkID, "Inception", 8.8, "writer"))

	persons, err := assembler.PersonsWithFilms(context.Background(), []string{testPersonID})
	require.NoError(t, err)
	require.Len(t, persons, 1)

	person := persons[0]
	assert.Equal(t, "Christopher Nolan", person.FullName)
	require.Len(t, person.Films, 1)

	film := person.Films[0]
	assert.Equal(t, testWorkID, film.ID)
	assert.Equal(t, "Inception", film.Title)
	require.NotNil(t, film.Rating)
	assert.Equal(t, []string{"director", "writer"}, film.Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssembler_PersonsWithFilms_NoFilms(t *testing.T) {
	db, mock := newMockDB(t)
	assembler := NewAssembler(db)

	mock.ExpectQuery("SELECT id, full_name FROM content.person").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).
			AddRow(testPersonID, "Unknown Extra"))

	mock.ExpectQuery("SELECT pfw.person_id").
		WillReturnRows(sqlmock.NewRows([]string{"person_id", "film_id", "title", "rating", "role"}))

	persons, err := assembler.PersonsWithFilms(context.Background(), []string{testPersonID})
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.NotNil(t, persons[0].Films)
	assert.Empty(t, persons[0].Films)
	assert.NoError(t, mock.ExpectationsWereMet())
}
