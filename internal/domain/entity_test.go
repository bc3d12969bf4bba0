package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKind_Names(t *testing.T) {
	tests := []struct {
		kind         Kind
		table        string
		watermarkKey string
		index        string
	}{
		{KindWork, "film_work", "film_work_last_modified", "movies"},
		{KindGenre, "genre", "genre_last_modified", "genres"},
		{KindPerson, "person", "person_last_modified", "persons"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.table, tt.kind.String())
			assert.Equal(t, tt.watermarkKey, tt.kind.WatermarkKey())
			assert.Equal(t, tt.index, tt.kind.IndexName())
		})
	}
}

func TestMaxModified(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	entities := []ChangedEntity{
		{ID: "a", Modified: base.Add(time.Hour)},
		{ID: "b", Modified: base.Add(3 * time.Hour)},
		{ID: "c", Modified: base},
	}
	assert.True(t, MaxModified(entities).Equal(base.Add(3*time.Hour)))
	assert.True(t, MaxModified(nil).IsZero())
}

func TestMaxGenreModified(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	genres := []ChangedGenre{
		{ID: "a", Modified: base.Add(time.Minute)},
		{ID: "b", Modified: base},
	}
	assert.True(t, MaxGenreModified(genres).Equal(base.Add(time.Minute)))
	assert.True(t, MaxGenreModified(nil).IsZero())
}
