package domain

// NamedRef is an {id, name} pair nested inside work documents.
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WorkDocument is the movies index document shape. The *_names fields are
// exactly the name projection of the corresponding nested field,
// order-preserving.
type WorkDocument struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	IMDBRating     *float64   `json:"imdb_rating"`
	Genres         []string   `json:"genres"`
	GenresDetails  []NamedRef `json:"genres_details"`
	Directors      []NamedRef `json:"directors"`
	Actors         []NamedRef `json:"actors"`
	Writers        []NamedRef `json:"writers"`
	DirectorsNames []string   `json:"directors_names"`
	ActorsNames    []string   `json:"actors_names"`
	WritersNames   []string   `json:"writers_names"`
}

// GenreDocument is the genres index document shape.
type GenreDocument struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// PersonFilmDocument is one nested film entry in a person document.
type PersonFilmDocument struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	IMDBRating *float64 `json:"imdb_rating"`
	Roles      []string `json:"roles"`
}

// PersonDocument is the persons index document shape.
type PersonDocument struct {
	ID       string               `json:"id"`
	FullName string               `json:"full_name"`
	Films    []PersonFilmDocument `json:"films"`
}

// DocumentID is implemented by every index document; the returned id becomes
// the Elasticsearch document id, which makes repeated writes of the same
// document a full overwrite.
type DocumentID interface {
	DocID() string
}

// DocID returns the work id.
func (d WorkDocument) DocID() string { return d.ID }

// DocID returns the genre id.
func (d GenreDocument) DocID() string { return d.ID }

// DocID returns the person id.
func (d PersonDocument) DocID() string { return d.ID }
