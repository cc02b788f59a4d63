package app

import (
	"fmt"

	"tabito/internal/domain"
)

var (
	allowedGeneralSet    = makeSet(AllowedGeneralTags)
	allowedAttractionSet = makeSet(AllowedAttractionTags)
	allowedRestaurantSet = makeSet(AllowedRestaurantTags)
	allowedHotelSet      = makeSet(AllowedHotelTags)
	allowedBudgetSet     = makeSet(AllowedBudgetTags)
)

func makeSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// Validate checks every tag group of a candidate against its enumeration and
// the remaining canonical invariants. All violations are collected so one
// call reports everything; any violation rejects the candidate from import.
func Validate(e domain.Experience) []string {
	var errs []string

	for _, tag := range e.GeneralTags {
		if _, ok := allowedGeneralSet[tag]; !ok {
			errs = append(errs, fmt.Sprintf("general tag %q is not in the allowed vocabulary", tag))
		}
	}
	for _, tag := range e.BudgetTags {
		if _, ok := allowedBudgetSet[tag]; !ok {
			errs = append(errs, fmt.Sprintf("budget tag %q is not in the allowed vocabulary", tag))
		}
	}

	if e.Tags != nil {
		set, group := allowedAttractionSet, "attraction"
		switch e.Tags.(type) {
		case domain.RestaurantTags:
			set, group = allowedRestaurantSet, "restaurant"
		case domain.HotelTags:
			set, group = allowedHotelSet, "hotel"
		}
		for _, tag := range e.Tags.Values() {
			if _, ok := set[tag]; !ok {
				errs = append(errs, fmt.Sprintf("%s tag %q is not in the allowed vocabulary", group, tag))
			}
		}
		if e.Tags.TagCategory() != e.Category {
			errs = append(errs, fmt.Sprintf("tag group %s does not match category %s", e.Tags.TagCategory(), e.Category))
		}
	}

	if e.Price < 0 {
		errs = append(errs, fmt.Sprintf("price %d is negative", e.Price))
	}
	if region, ok := PrefectureRegion(e.Prefecture); !ok {
		errs = append(errs, fmt.Sprintf("prefecture %q is not in the gazetteer", e.Prefecture))
	} else if region != e.Region {
		errs = append(errs, fmt.Sprintf("prefecture %q belongs to region %q, not %q", e.Prefecture, region, e.Region))
	}

	return errs
}
