package app

import (
	"context"
	"fmt"
	"time"

	"tabito/internal/domain"
)

// QueryService serves the catalog read endpoints with a cache in front of the
// store.
type QueryService struct {
	store    domain.ExperienceStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(store domain.ExperienceStore, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: store, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) GetExperience(ctx context.Context, id int64) (domain.CatalogRecord, error) {
	key := fmt.Sprintf("experience:%d", id)
	var rec domain.CatalogRecord
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &rec); ok {
			return rec, nil
		}
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.CatalogRecord{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, rec, int(s.cacheTTL.Seconds()))
	}
	return rec, nil
}

func (s *QueryService) ListExperiences(ctx context.Context, q domain.ListQuery) ([]domain.CatalogRecord, error) {
	key := fmt.Sprintf("experiences:%s:%s:%d", q.Prefecture, q.Category, q.Limit)
	var out []domain.CatalogRecord
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	recs, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	// copy to avoid aliasing the store's backing array in the cached value
	out = make([]domain.CatalogRecord, len(recs))
	copy(out, recs)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// CountByCategory backs the admin dashboard totals.
func (s *QueryService) CountByCategory(ctx context.Context, category domain.Category) (int64, error) {
	return s.store.Count(ctx, domain.Predicate{Kind: domain.MatchTitle, Category: category})
}
