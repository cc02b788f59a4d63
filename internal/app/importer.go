package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tabito/internal/adapters/observability"
	"tabito/internal/domain"
)

const previewLimit = 10

// ImportService drives the three import entry points. Items inside one batch
// are processed strictly sequentially, each yielding exactly one outcome; no
// item failure ever aborts the batch.
type ImportService struct {
	providers map[domain.Source]domain.SearchProvider
	store     domain.ExperienceStore
	cache     domain.Cache // optional; preview result caching
	cacheTTL  time.Duration
}

func NewImportService(providers map[domain.Source]domain.SearchProvider, store domain.ExperienceStore, cache domain.Cache, ttl time.Duration) *ImportService {
	return &ImportService{providers: providers, store: store, cache: cache, cacheTTL: ttl}
}

func (s *ImportService) provider(source domain.Source) (domain.SearchProvider, error) {
	p, ok := s.providers[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", source)
	}
	return p, nil
}

// PreviewSearch runs search + detail enrichment + transform + validation for
// up to ten results and returns the canonical candidates without persisting
// anything, so an admin can review and edit them before a full import.
func (s *ImportService) PreviewSearch(ctx context.Context, query string, source domain.Source, prefecture string, category domain.Category) ([]domain.Experience, error) {
	key := fmt.Sprintf("preview:%s:%s:%s:%s", source, query, prefecture, category)
	if s.cache != nil {
		var cached []domain.Experience
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	p, err := s.provider(source)
	if err != nil {
		return nil, err
	}
	raws, err := p.Search(ctx, query, prefecture)
	if err != nil {
		return nil, err
	}
	if len(raws) > previewLimit {
		raws = raws[:previewLimit]
	}

	tr := NewTransformer(source)
	out := make([]domain.Experience, 0, len(raws))
	for _, raw := range raws {
		raw = enrich(ctx, p, raw)
		e, terr := tr.Transform(raw, category)
		if terr != nil {
			log.Warn().Str("source", string(source)).Str("id", raw.ID).Err(terr).Msg("preview transform skipped")
			continue
		}
		if errs := Validate(e); len(errs) > 0 {
			log.Warn().Str("source", string(source)).Str("title", e.Title).Strs("violations", errs).Msg("preview candidate invalid")
			continue
		}
		out = append(out, e)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// FullImport persists already-edited candidates (normally from a reviewed
// preview). Every candidate is re-cleaned and re-validated first; edits made
// in the admin UI are not trusted.
func (s *ImportService) FullImport(ctx context.Context, source domain.Source, candidates []domain.Experience, category domain.Category) domain.BatchResult {
	tr := NewTransformer(source)
	var res domain.BatchResult
	for i, cand := range candidates {
		if cand.Category == "" {
			cand.Category = category
		}
		s.importOne(ctx, source, tr.Clean(cand), i, &res)
	}
	return res
}

// QuickImport searches, transforms, and persists up to limit results in one
// call, skipping the preview step.
func (s *ImportService) QuickImport(ctx context.Context, query string, category domain.Category, prefecture string, limit int, source domain.Source) (domain.BatchResult, error) {
	p, err := s.provider(source)
	if err != nil {
		return domain.BatchResult{}, err
	}
	raws, err := p.Search(ctx, query, prefecture)
	if err != nil {
		return domain.BatchResult{}, err
	}
	if limit > 0 && len(raws) > limit {
		raws = raws[:limit]
	}

	tr := NewTransformer(source)
	var res domain.BatchResult
	for i, raw := range raws {
		e, terr := tr.Transform(raw, category)
		if terr != nil {
			res.AddError(i, raw.ID, terr.Error())
			observability.ObserveImport(string(source), string(domain.OutcomeError))
			continue
		}
		s.importOne(ctx, source, e, i, &res)
	}
	return res, nil
}

// enrich merges the provider's detail fields over the search record. Detail
// values win; the original raw map is left untouched.
func enrich(ctx context.Context, p domain.SearchProvider, raw domain.RawPlace) domain.RawPlace {
	det, ok := p.Details(ctx, raw.ID)
	if !ok {
		return raw
	}
	merged := make(map[string]any, len(raw.Fields)+len(det.Fields))
	for k, v := range raw.Fields {
		merged[k] = v
	}
	for k, v := range det.Fields {
		merged[k] = v
	}
	raw.Fields = merged
	return raw
}

// importOne is the shared per-item pipeline: validate, deduplicate, persist.
func (s *ImportService) importOne(ctx context.Context, source domain.Source, e domain.Experience, idx int, res *domain.BatchResult) {
	if errs := Validate(e); len(errs) > 0 {
		res.AddError(idx, e.Title, strings.Join(errs, "; "))
		observability.ObserveImport(string(source), string(domain.OutcomeError))
		return
	}

	if existingID, found, err := FindExisting(ctx, s.store, e); err != nil {
		res.AddError(idx, e.Title, fmt.Sprintf("dedupe lookup failed: %v", err))
		observability.ObserveImport(string(source), string(domain.OutcomeError))
		return
	} else if found {
		res.AddDuplicate(idx, e.Title, existingID)
		observability.ObserveImport(string(source), string(domain.OutcomeDuplicate))
		log.Info().Str("title", e.Title).Int64("existing", existingID).Msg("duplicate skipped")
		return
	}

	id, err := s.store.Insert(ctx, e)
	if err != nil {
		res.AddError(idx, e.Title, fmt.Sprintf("persist failed: %v", err))
		observability.ObserveImport(string(source), string(domain.OutcomeError))
		return
	}
	res.AddImported(idx, e.Title, id)
	observability.ObserveImport(string(source), string(domain.OutcomeImported))
	log.Info().Str("title", e.Title).Int64("id", id).Str("source", string(source)).Msg("experience imported")
}
