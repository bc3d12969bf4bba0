package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gryroach/theater-search-etl/internal/domain"
)

// DefaultBatchSize caps how many changed entities one extraction call
// returns.
const DefaultBatchSize = 100

// Extractor queries the relational store for entities changed after a
// watermark. Results are ordered ascending by the change timestamp so the
// caller can advance the watermark to the maximum seen.
type Extractor struct {
	db        *sqlx.DB
	batchSize int
}

// NewExtractor creates an extractor. batchSize <= 0 falls back to
// DefaultBatchSize.
func NewExtractor(db *sqlx.DB, batchSize int) *Extractor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Extractor{db: db, batchSize: batchSize}
}

// NewWorks returns works created after the watermark, ordered by creation
// time.
func (e *Extractor) NewWorks(ctx context.Context, since time.Time) ([]domain.ChangedEntity, error) {
	query := `
		SELECT id, modified
		FROM content.film_work
		WHERE created > $1
		ORDER BY created
		LIMIT $2`

	var works []domain.ChangedEntity
	if err := e.db.SelectContext(ctx, &works, query, since, e.batchSize); err != nil {
		return nil, fmt.Errorf("fetch new works: %w", err)
	}
	return works, nil
}

// ModifiedPersons returns persons modified after the watermark.
func (e *Extractor) ModifiedPersons(ctx context.Context, since time.Time) ([]domain.ChangedEntity, error) {
	query := `
		SELECT id, modified
		FROM content.person
		WHERE modified > $1
		ORDER BY modified
		LIMIT $2`

	var persons []domain.ChangedEntity
	if err := e.db.SelectContext(ctx, &persons, query, since, e.batchSize); err != nil {
		return nil, fmt.Errorf("fetch modified persons: %w", err)
	}
	return persons, nil
}

// ModifiedGenres returns genres modified after the watermark together with
// their attributes, so genre documents need no second fetch.
func (e *Extractor) ModifiedGenres(ctx context.Context, since time.Time) ([]domain.ChangedGenre, error) {
	query := `
		SELECT id, modified, name, description
		FROM content.genre
		WHERE modified > $1
		ORDER BY modified
		LIMIT $2`

	var genres []domain.ChangedGenre
	if err := e.db.SelectContext(ctx, &genres, query, since, e.batchSize); err != nil {
		return nil, fmt.Errorf("fetch modified genres: %w", err)
	}
	return genres, nil
}

// normalizeUUIDs validates ids and returns them in canonical textual form.
// A single malformed id fails the whole batch.
func normalizeUUIDs(ids []string) ([]string, error) {
	normalized := make([]string, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("malformed entity id %q: %w", id, err)
		}
		normalized = append(normalized, parsed.String())
	}
	return normalized, nil
}
