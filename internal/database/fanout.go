package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gryroach/theater-search-etl/internal/domain"
)

// Fanout resolves changed leaf entities (persons, genres) into the works
// that embed them and must be re-materialized. The expansion is a single
// hop: a work surfaced here does not re-trigger person or genre indexing.
type Fanout struct {
	db        *sqlx.DB
	batchSize int
}

// NewFanout creates a fan-out resolver.
func NewFanout(db *sqlx.DB, batchSize int) *Fanout {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Fanout{db: db, batchSize: batchSize}
}

// WorksByPersons returns the distinct works crediting any of the given
// persons, carrying each work's own modified timestamp. Empty input
// short-circuits without querying.
func (f *Fanout) WorksByPersons(ctx context.Context, personIDs []string) ([]domain.ChangedEntity, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	ids, err := normalizeUUIDs(personIDs)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT DISTINCT fw.id, fw.modified
		FROM content.film_work fw
		JOIN content.person_film_work pfw ON pfw.film_work_id = fw.id
		WHERE pfw.person_id = ANY($1::uuid[])
		ORDER BY fw.modified
		LIMIT $2`

	var works []domain.ChangedEntity
	if err := f.db.SelectContext(ctx, &works, query, pq.Array(ids), f.batchSize); err != nil {
		return nil, fmt.Errorf("fetch works by persons: %w", err)
	}
	return works, nil
}

// WorksByGenres returns the distinct works tagged with any of the given
// genres. Empty input short-circuits without querying.
func (f *Fanout) WorksByGenres(ctx context.Context, genreIDs []string) ([]domain.ChangedEntity, error) {
	if len(genreIDs) == 0 {
		return nil, nil
	}
	ids, err := normalizeUUIDs(genreIDs)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT DISTINCT fw.id, fw.modified
		FROM content.film_work fw
		JOIN content.genre_film_work gfw ON gfw.film_work_id = fw.id
		WHERE gfw.genre_id = ANY($1::uuid[])
		ORDER BY fw.modified
		LIMIT $2`

	var works []domain.ChangedEntity
	if err := f.db.SelectContext(ctx, &works, query, pq.Array(ids), f.batchSize); err != nil {
		return nil, fmt.Errorf("fetch works by genres: %w", err)
	}
	return works, nil
}

// AffectedWorkIDs returns the set union of newly created work ids and the
// ids of works referencing any changed person or genre, sorted for
// deterministic downstream queries.
func AffectedWorkIDs(newWorks, byPersons, byGenres []domain.ChangedEntity) []string {
	seen := make(map[string]struct{})
	for _, group := range [][]domain.ChangedEntity{newWorks, byPersons, byGenres} {
		for _, work := range group {
			seen[work.ID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
