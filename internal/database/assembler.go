package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gryroach/theater-search-etl/internal/domain"
)

// Assembler loads full denormalized payloads for works and persons. Each
// payload is built from independent queries joined in memory by id, because
// a single SQL join would duplicate the scalar columns once per related row.
type Assembler struct {
	db *sqlx.DB
}

// NewAssembler creates an assembler.
func NewAssembler(db *sqlx.DB) *Assembler {
	return &Assembler{db: db}
}

type workRow struct {
	ID          string          `db:"id"`
	Title       string          `db:"title"`
	Description sql.NullString  `db:"description"`
	Rating      sql.NullFloat64 `db:"rating"`
	Type        string          `db:"type"`
	Created     time.Time       `db:"created"`
	Modified    time.Time       `db:"modified"`
}

type workPersonRow struct {
	FilmWorkID string `db:"film_work_id"`
	PersonID   string `db:"person_id"`
	PersonName string `db:"person_name"`
	Role       string `db:"role"`
}

type workGenreRow struct {
	FilmWorkID string `db:"film_work_id"`
	GenreID    string `db:"genre_id"`
	GenreName  string `db:"genre_name"`
}

// AssembleWorks loads the works with the given ids together with their
// person credits and genres. A work with no relations still appears in the
// output with empty slices. Empty input yields an empty result.
func (a *Assembler) AssembleWorks(ctx context.Context, workIDs []string) ([]domain.AssembledWork, error) {
	if len(workIDs) == 0 {
		return nil, nil
	}
	ids, err := normalizeUUIDs(workIDs)
	if err != nil {
		return nil, err
	}

	works, err := a.fetchWorkRows(ctx, ids)
	if err != nil {
		return nil, err
	}
	persons, err := a.fetchWorkPersons(ctx, ids)
	if err != nil {
		return nil, err
	}
	genres, err := a.fetchWorkGenres(ctx, ids)
	if err != nil {
		return nil, err
	}

	return combineWorks(works, persons, genres), nil
}

func (a *Assembler) fetchWorkRows(ctx context.Context, ids []string) ([]workRow, error) {
	query := `
		SELECT id, title, description, rating, type, created, modified
		FROM content.film_work
		WHERE id = ANY($1::uuid[])`

	var rows []workRow
	if err := a.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("fetch work details: %w", err)
	}
	return rows, nil
}

func (a *Assembler) fetchWorkPersons(ctx context.Context, ids []string) ([]workPersonRow, error) {
	query := `
		SELECT pfw.film_work_id, p.id AS person_id, p.full_name AS person_name, pfw.role
		FROM content.person_film_work pfw
		JOIN content.person p ON p.id = pfw.person_id
		WHERE pfw.film_work_id = ANY($1::uuid[])`

	var rows []workPersonRow
	if err := a.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("fetch work persons: %w", err)
	}
	return rows, nil
}

func (a *Assembler) fetchWorkGenres(ctx context.Context, ids []string) ([]workGenreRow, error) {
	query := `
		SELECT gfw.film_work_id, g.id AS genre_id, g.name AS genre_name
		FROM content.genre_film_work gfw
		JOIN content.genre g ON g.id = gfw.genre_id
		WHERE gfw.film_work_id = ANY($1::uuid[])`

	var rows []workGenreRow
	if err := a.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("fetch work genres: %w", err)
	}
	return rows, nil
}

func combineWorks(works []workRow, persons []workPersonRow, genres []workGenreRow) []domain.AssembledWork {
	byID := make(map[string]*domain.AssembledWork, len(works))
	ordered := make([]*domain.AssembledWork, 0, len(works))

	for _, row := range works {
		work := &domain.AssembledWork{
			ID:       row.ID,
			Title:    row.Title,
			Type:     row.Type,
			Created:  row.Created,
			Modified: row.Modified,
			Persons:  []domain.WorkPerson{},
			Genres:   []domain.WorkGenre{},
		}
		if row.Description.Valid {
			desc := row.Description.String
			work.Description = &desc
		}
		if row.Rating.Valid {
			rating := row.Rating.Float64
			work.Rating = &rating
		}
		byID[row.ID] = work
		ordered = append(ordered, work)
	}

	for _, row := range persons {
		if work, ok := byID[row.FilmWorkID]; ok {
			work.Persons = append(work.Persons, domain.WorkPerson{
				ID:   row.PersonID,
				Name: row.PersonName,
				Role: row.Role,
			})
		}
	}
	for _, row := range genres {
		if work, ok := byID[row.FilmWorkID]; ok {
			work.Genres = append(work.Genres, domain.WorkGenre{
				ID:   row.GenreID,
				Name: row.GenreName,
			})
		}
	}

	result := make([]domain.AssembledWork, 0, len(ordered))
	for _, work := range ordered {
		result = append(result, *work)
	}
	return result
}

type personRow struct {
	ID       string `db:"id"`
	FullName string `db:"full_name"`
}

type personFilmRow struct {
	PersonID string          `db:"person_id"`
	FilmID   string          `db:"film_id"`
	Title    string          `db:"title"`
	Rating   sql.NullFloat64 `db:"rating"`
	Role     string          `db:"role"`
}

// PersonsWithFilms loads the persons with the given ids together with their
// distinct films and the distinct set of roles held on each film. A person
// credited as both actor and writer on one film gets a single film entry
// with both roles.
func (a *Assembler) PersonsWithFilms(ctx context.Context, personIDs []string) ([]domain.AssembledPerson, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	ids, err := normalizeUUIDs(personIDs)
	if err != nil {
		return nil, err
	}

	var persons []personRow
	personQuery := `
		SELECT id, full_name
		FROM content.person
		WHERE id = ANY($1::uuid[])`
	if err := a.db.SelectContext(ctx, &persons, personQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("fetch persons: %w", err)
	}

	var films []personFilmRow
	filmQuery := `
		SELECT pfw.person_id, fw.id AS film_id, fw.title, fw.rating, pfw.role
		FROM content.person_film_work pfw
		JOIN content.film_work fw ON fw.id = pfw.film_work_id
		WHERE pfw.person_id = ANY($1::uuid[])
		ORDER BY fw.title`
	if err := a.db.SelectContext(ctx, &films, filmQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("fetch person films: %w", err)
	}

	return combinePersons(persons, films), nil
}

func combinePersons(persons []personRow, films []personFilmRow) []domain.AssembledPerson {
	filmsByPerson := make(map[string][]*domain.PersonFilm)
	filmIndex := make(map[string]map[string]*domain.PersonFilm)

	for _, row := range films {
		if filmIndex[row.PersonID] == nil {
			filmIndex[row.PersonID] = make(map[string]*domain.PersonFilm)
		}
		film, ok := filmIndex[row.PersonID][row.FilmID]
		if !ok {
			film = &domain.PersonFilm{ID: row.FilmID, Title: row.Title}
			if row.Rating.Valid {
				rating := row.Rating.Float64
				film.Rating = &rating
			}
			filmIndex[row.PersonID][row.FilmID] = film
			filmsByPerson[row.PersonID] = append(filmsByPerson[row.PersonID], film)
		}
		if !containsRole(film.Roles, row.Role) {
			film.Roles = append(film.Roles, row.Role)
		}
	}

	result := make([]domain.AssembledPerson, 0, len(persons))
	for _, row := range persons {
		assembled := domain.AssembledPerson{
			ID:       row.ID,
			FullName: row.FullName,
			Films:    []domain.PersonFilm{},
		}
		for _, film := range filmsByPerson[row.ID] {
			assembled.Films = append(assembled.Films, *film)
		}
		result = append(result, assembled)
	}
	return result
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
