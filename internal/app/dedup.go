package app

import (
	"context"

	"tabito/internal/domain"
)

// dedupePredicates builds the ordered match set for a candidate: its own
// provider id first, the other provider's id second (candidates enriched from
// both sources carry both), and finally the exact (title, prefecture,
// category) triple. The title predicate can false-positive on two distinct
// places sharing a name in one prefecture; that ambiguity is inherited from
// the source data model and left as-is.
func dedupePredicates(e domain.Experience) []domain.Predicate {
	var preds []domain.Predicate
	if e.ExternalIDs.PlaceID != "" {
		preds = append(preds, domain.Predicate{Kind: domain.MatchPlaceID, Value: e.ExternalIDs.PlaceID})
	}
	if e.ExternalIDs.OSMID != "" {
		preds = append(preds, domain.Predicate{Kind: domain.MatchOSMID, Value: e.ExternalIDs.OSMID})
	}
	preds = append(preds, domain.Predicate{
		Kind:       domain.MatchTitle,
		Value:      e.Title,
		Prefecture: e.Prefecture,
		Category:   e.Category,
	})
	return preds
}

// FindExisting asks the store whether the candidate is already cataloged.
// It returns the existing id when any predicate matches.
func FindExisting(ctx context.Context, store domain.ExperienceStore, e domain.Experience) (int64, bool, error) {
	rec, err := store.FindOne(ctx, dedupePredicates(e))
	if err != nil {
		return 0, false, err
	}
	if rec == nil {
		return 0, false, nil
	}
	return rec.ID, true, nil
}
