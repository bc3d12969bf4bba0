package mappings

import (
	"fmt"

	"github.com/gryroach/theater-search-etl/internal/domain"
)

// ForKind returns the index schema for an entity kind.
func ForKind(kind domain.Kind) (map[string]any, error) {
	switch kind {
	case domain.KindWork:
		return Movies(), nil
	case domain.KindGenre:
		return Genres(), nil
	case domain.KindPerson:
		return Persons(), nil
	default:
		return nil, fmt.Errorf("no mapping for entity kind %d", kind)
	}
}
