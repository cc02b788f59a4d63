package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// SearchProvider is the contract both provider adapters implement. Search
// never returns a hard failure for provider unavailability; it falls back to
// deterministic mock data instead. The explicit "no results" case returns an
// empty list and nil error.
type SearchProvider interface {
	Search(ctx context.Context, query, prefecture string) ([]RawPlace, error)
	// Details enriches a single result. ok=false means no enrichment is
	// available (mock ids, providers without a detail endpoint).
	Details(ctx context.Context, id string) (RawPlace, bool)
}

// PredicateKind selects which identity a Predicate matches on.
type PredicateKind int

const (
	MatchPlaceID PredicateKind = iota
	MatchOSMID
	MatchTitle // exact (title, prefecture, category)
)

// Predicate is one deduplication match condition. The store answers an
// ordered set of these with a single "any of" lookup.
type Predicate struct {
	Kind       PredicateKind
	Value      string
	Prefecture string   // MatchTitle only
	Category   Category // MatchTitle only
}

// ExperienceStore is the persisted catalog as seen by the pipeline. The
// pipeline never issues queries beyond these shapes.
type ExperienceStore interface {
	FindOne(ctx context.Context, preds []Predicate) (*CatalogRecord, error)
	Insert(ctx context.Context, e Experience) (int64, error)
	Count(ctx context.Context, pred Predicate) (int64, error)

	// Read paths for the catalog API.
	Get(ctx context.Context, id int64) (CatalogRecord, error)
	List(ctx context.Context, q ListQuery) ([]CatalogRecord, error)
}

// ListQuery filters the catalog read path.
type ListQuery struct {
	Prefecture string
	Category   Category
	Limit      int
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
