package app

import "tabito/internal/domain"

// Price tables are indexed by the provider's ordinal price level (0..4) and
// return yen amounts. The two providers keep separate tables because their
// level semantics differ, and so do their defaults when a level is absent:
// places defaults to 2, osm to 1. The asymmetry mirrors provider behavior and
// is intentional; do not unify.

const (
	DefaultLevelPlaces = 2
	DefaultLevelOSM    = 1
)

var placesPriceTable = map[domain.Category][5]int64{
	domain.CategoryRestaurant: {0, 1000, 2500, 5000, 10000},
	domain.CategoryHotel:      {0, 4000, 8000, 15000, 30000},
	domain.CategoryAttraction: {0, 500, 1000, 2000, 4000},
}

var osmPriceTable = map[domain.Category][5]int64{
	domain.CategoryRestaurant: {0, 800, 2000, 4500, 9000},
	domain.CategoryHotel:      {0, 3000, 7000, 14000, 28000},
	domain.CategoryAttraction: {0, 300, 800, 1500, 3000},
}

// budgetLabels maps the ordinal level to the qualitative budget tag. Levels 1
// and 2 share "Económico" on purpose; the label scale is coarser than the
// price scale.
var budgetLabels = [5]string{"Gratis", "Económico", "Económico", "Moderado", "Lujo"}

// PriceForLevel resolves an ordinal price level to a yen amount for the given
// provider and category. A nil level falls back to the provider's default
// level before lookup; out-of-range levels are clamped.
func PriceForLevel(source domain.Source, category domain.Category, level *int) int64 {
	table, def := placesPriceTable, DefaultLevelPlaces
	if source == domain.SourceOSM {
		table, def = osmPriceTable, DefaultLevelOSM
	}
	row, ok := table[category]
	if !ok {
		row = table[domain.CategoryAttraction]
	}
	return row[clampLevel(level, def)]
}

// BudgetForLevel resolves an ordinal price level to its budget label, using
// the provider's default level when the signal is absent.
func BudgetForLevel(source domain.Source, level *int) string {
	def := DefaultLevelPlaces
	if source == domain.SourceOSM {
		def = DefaultLevelOSM
	}
	return budgetLabels[clampLevel(level, def)]
}

func clampLevel(level *int, def int) int {
	l := def
	if level != nil {
		l = *level
	}
	if l < 0 {
		l = 0
	}
	if l > 4 {
		l = 4
	}
	return l
}
