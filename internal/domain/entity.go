// Package domain defines the entity types flowing through the sync pipeline:
// change projections read from Postgres, assembled relational payloads, and
// the denormalized document shapes written to Elasticsearch.
package domain

// Kind identifies one of the three synchronized entity types. It is a closed
// set; every switch over Kind handles all three values explicitly so adding
// a fourth entity type is a compile-visible change.
type Kind int

const (
	KindWork Kind = iota
	KindGenre
	KindPerson
)

// Kinds lists every entity kind in watermark-read order.
var Kinds = []Kind{KindWork, KindGenre, KindPerson}

// String returns the source table name for the kind.
func (k Kind) String() string {
	switch k {
	case KindWork:
		return "film_work"
	case KindGenre:
		return "genre"
	case KindPerson:
		return "person"
	default:
		return "unknown"
	}
}

// WatermarkKey returns the state-storage key holding the kind's watermark.
func (k Kind) WatermarkKey() string {
	return k.String() + "_last_modified"
}

// IndexName returns the Elasticsearch index fed by the kind.
func (k Kind) IndexName() string {
	switch k {
	case KindWork:
		return "movies"
	case KindGenre:
		return "genres"
	case KindPerson:
		return "persons"
	default:
		return "unknown"
	}
}
