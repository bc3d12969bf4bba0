// Package pipeline drives the incremental synchronization cycle from the
// relational store into the search indices.
package pipeline

import (
	"context"
	"time"

	"github.com/gryroach/theater-search-etl/internal/domain"
)

// ChangeExtractor queries the relational store for entities changed after a
// watermark.
type ChangeExtractor interface {
	NewWorks(ctx context.Context, since time.Time) ([]domain.ChangedEntity, error)
	ModifiedPersons(ctx context.Context, since time.Time) ([]domain.ChangedEntity, error)
	ModifiedGenres(ctx context.Context, since time.Time) ([]domain.ChangedGenre, error)
}

// FanoutResolver expands changed leaf entities into the works referencing
// them.
type FanoutResolver interface {
	WorksByPersons(ctx context.Context, personIDs []string) ([]domain.ChangedEntity, error)
	WorksByGenres(ctx context.Context, genreIDs []string) ([]domain.ChangedEntity, error)
}

// Assembler loads full denormalized payloads for a set of entity ids.
type Assembler interface {
	AssembleWorks(ctx context.Context, workIDs []string) ([]domain.AssembledWork, error)
	PersonsWithFilms(ctx context.Context, personIDs []string) ([]domain.AssembledPerson, error)
}

// IndexWriter manages index lifecycle and performs idempotent batched
// upserts.
type IndexWriter interface {
	EnsureIndex(ctx context.Context, name string, schema map[string]any) error
	DropIndex(ctx context.Context, name string) (bool, error)
	BulkUpsert(ctx context.Context, name string, docs []domain.DocumentID) error
}

// WatermarkStore tracks the last processed change timestamp per entity kind.
type WatermarkStore interface {
	Get(ctx context.Context, kind domain.Kind) time.Time
	Set(ctx context.Context, kind domain.Kind, ts time.Time) error
	Initialized(ctx context.Context) bool
	Reset(ctx context.Context) error
}

// Lock keeps sync cycles mutually exclusive across worker processes.
type Lock interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
	Extend(ctx context.Context) (bool, error)
}
