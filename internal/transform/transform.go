// Package transform maps assembled relational payloads into the document
// shapes of the search indices. All functions are pure: no I/O, no state.
package transform

import "github.com/gryroach/theater-search-etl/internal/domain"

// Role values as stored in the person_film_work association table.
const (
	RoleDirector = "director"
	RoleActor    = "actor"
	RoleWriter   = "writer"
)

// Works maps assembled works into movies index documents. The person
// relation is split by role and the *_names arrays are derived as
// order-preserving name projections.
func Works(works []domain.AssembledWork) []domain.WorkDocument {
	docs := make([]domain.WorkDocument, 0, len(works))
	for _, work := range works {
		doc := domain.WorkDocument{
			ID:            work.ID,
			Title:         work.Title,
			Description:   work.Description,
			IMDBRating:    work.Rating,
			Genres:        genreNames(work.Genres),
			GenresDetails: genreRefs(work.Genres),
			Directors:     peopleByRole(work.Persons, RoleDirector),
			Actors:        peopleByRole(work.Persons, RoleActor),
			Writers:       peopleByRole(work.Persons, RoleWriter),
		}
		doc.DirectorsNames = names(doc.Directors)
		doc.ActorsNames = names(doc.Actors)
		doc.WritersNames = names(doc.Writers)
		docs = append(docs, doc)
	}
	return docs
}

// Genres maps changed genres into genres index documents.
func Genres(genres []domain.ChangedGenre) []domain.GenreDocument {
	docs := make([]domain.GenreDocument, 0, len(genres))
	for _, genre := range genres {
		doc := domain.GenreDocument{
			ID:   genre.ID,
			Name: genre.Name,
		}
		if genre.Description.Valid {
			desc := genre.Description.String
			doc.Description = &desc
		}
		docs = append(docs, doc)
	}
	return docs
}

// Persons maps assembled persons into persons index documents.
func Persons(persons []domain.AssembledPerson) []domain.PersonDocument {
	docs := make([]domain.PersonDocument, 0, len(persons))
	for _, person := range persons {
		doc := domain.PersonDocument{
			ID:       person.ID,
			FullName: person.FullName,
			Films:    make([]domain.PersonFilmDocument, 0, len(person.Films)),
		}
		for _, film := range person.Films {
			doc.Films = append(doc.Films, domain.PersonFilmDocument{
				ID:         film.ID,
				Title:      film.Title,
				IMDBRating: film.Rating,
				Roles:      film.Roles,
			})
		}
		docs = append(docs, doc)
	}
	return docs
}

func peopleByRole(persons []domain.WorkPerson, role string) []domain.NamedRef {
	refs := []domain.NamedRef{}
	for _, person := range persons {
		if person.Role == role {
			refs = append(refs, domain.NamedRef{ID: person.ID, Name: person.Name})
		}
	}
	return refs
}

func names(refs []domain.NamedRef) []string {
	result := make([]string, 0, len(refs))
	for _, ref := range refs {
		result = append(result, ref.Name)
	}
	return result
}

func genreNames(genres []domain.WorkGenre) []string {
	result := make([]string, 0, len(genres))
	for _, genre := range genres {
		result = append(result, genre.Name)
	}
	return result
}

func genreRefs(genres []domain.WorkGenre) []domain.NamedRef {
	refs := make([]domain.NamedRef, 0, len(genres))
	for _, genre := range genres {
		refs = append(refs, domain.NamedRef{ID: genre.ID, Name: genre.Name})
	}
	return refs
}
