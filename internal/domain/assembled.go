package domain

import "time"

// WorkPerson is one person credit on a work, as read from the
// person_film_work association table.
type WorkPerson struct {
	ID   string
	Name string
	Role string
}

// WorkGenre is one genre attached to a work.
type WorkGenre struct {
	ID   string
	Name string
}

// AssembledWork is the full denormalized payload for one work, joined in
// memory from the three assembler queries. Persons and Genres are never nil;
// a work with no relations carries empty slices.
type AssembledWork struct {
	ID          string
	Title       string
	Description *string
	Rating      *float64
	Type        string
	Created     time.Time
	Modified    time.Time
	Persons     []WorkPerson
	Genres      []WorkGenre
}

// PersonFilm is one film in a person's filmography with the distinct set of
// roles the person held on it.
type PersonFilm struct {
	ID     string
	Title  string
	Rating *float64
	Roles  []string
}

// AssembledPerson is the full payload for one person across all their films.
type AssembledPerson struct {
	ID       string
	FullName string
	Films    []PersonFilm
}
