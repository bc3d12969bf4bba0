package domain

import (
	"database/sql"
	"time"
)

// ChangedEntity is the minimal projection used to detect a change and to
// compute the next watermark.
type ChangedEntity struct {
	ID       string    `db:"id"`
	Modified time.Time `db:"modified"`
}

// ChangedGenre carries the genre attributes alongside the change marker so a
// genre document can be built without a second fetch.
type ChangedGenre struct {
	ID          string         `db:"id"`
	Modified    time.Time      `db:"modified"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
}

// MaxModified returns the latest change timestamp among the entities, or the
// zero time for an empty slice.
func MaxModified(entities []ChangedEntity) time.Time {
	var maxTime time.Time
	for _, e := range entities {
		if e.Modified.After(maxTime) {
			maxTime = e.Modified
		}
	}
	return maxTime
}

// MaxGenreModified is MaxModified for genre change markers.
func MaxGenreModified(genres []ChangedGenre) time.Time {
	var maxTime time.Time
	for _, g := range genres {
		if g.Modified.After(maxTime) {
			maxTime = g.Modified
		}
	}
	return maxTime
}
