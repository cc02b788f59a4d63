package app

import (
	"strings"

	"tabito/internal/domain"
)

// Controlled vocabularies. Tag values outside these enumerations never reach
// the catalog; the validator rejects candidates carrying them.

var AllowedGeneralTags = []string{
	"Cultural",
	"Naturaleza",
	"Gastronomía",
	"Familiar",
	"Romántico",
	"Aventura",
	"Compras",
	"Vida nocturna",
}

var AllowedAttractionTags = []string{
	"Monumentos históricos",
	"Templos y santuarios",
	"Museos",
	"Parques y jardines",
	"Castillos",
	"Miradores",
	"Barrios tradicionales",
	"Experiencias culturales",
}

var AllowedRestaurantTags = []string{
	"Sushi",
	"Ramen",
	"Izakaya",
	"Yakitori",
	"Tempura",
	"Kaiseki",
	"Okonomiyaki",
	"Cafetería",
	"Cocina internacional",
}

var AllowedHotelTags = []string{
	"Ryokan",
	"Hotel de negocios",
	"Hotel cápsula",
	"Albergue",
	"Hotel de lujo",
	"Apartamento",
}

var AllowedBudgetTags = []string{"Gratis", "Económico", "Moderado", "Lujo"}

// Cardinality caps per group.
const (
	maxAttractionTags = 3
	maxRestaurantTags = 3
	maxHotelTags      = 2
	maxBudgetTags     = 1
)

// Defaults applied when mapping leaves a required group empty.
const (
	defaultAttractionTag = "Monumentos históricos"
	defaultRestaurantTag = "Cocina internacional"
	defaultHotelTag      = "Hotel de negocios"
)

// Normalization dictionaries: lower-cased raw provider tokens → canonical tag.
// Unmapped tokens are dropped, never passed through.

var attractionTagDict = map[string]string{
	"tourist_attraction": "Monumentos históricos",
	"monument":           "Monumentos históricos",
	"historic":           "Monumentos históricos",
	"memorial":           "Monumentos históricos",
	"place_of_worship":   "Templos y santuarios",
	"temple":             "Templos y santuarios",
	"shrine":             "Templos y santuarios",
	"church":             "Templos y santuarios",
	"museum":             "Museos",
	"art_gallery":        "Museos",
	"gallery":            "Museos",
	"park":               "Parques y jardines",
	"garden":             "Parques y jardines",
	"botanical_garden":   "Parques y jardines",
	"castle":             "Castillos",
	"fort":               "Castillos",
	"viewpoint":          "Miradores",
	"observation_deck":   "Miradores",
	"tower":              "Miradores",
	"neighbourhood":      "Barrios tradicionales",
	"old_town":           "Barrios tradicionales",
	"heritage":           "Barrios tradicionales",
	"cultural_center":    "Experiencias culturales",
	"theater":            "Experiencias culturales",
	"workshop":           "Experiencias culturales",
}

var restaurantTagDict = map[string]string{
	"sushi":         "Sushi",
	"seafood":       "Sushi",
	"ramen":         "Ramen",
	"noodle":        "Ramen",
	"noodles":       "Ramen",
	"izakaya":       "Izakaya",
	"bar":           "Izakaya",
	"pub":           "Izakaya",
	"yakitori":      "Yakitori",
	"grill":         "Yakitori",
	"barbecue":      "Yakitori",
	"tempura":       "Tempura",
	"kaiseki":       "Kaiseki",
	"fine_dining":   "Kaiseki",
	"okonomiyaki":   "Okonomiyaki",
	"cafe":          "Cafetería",
	"coffee_shop":   "Cafetería",
	"bakery":        "Cafetería",
	"restaurant":    "Cocina internacional",
	"international": "Cocina internacional",
	"italian":       "Cocina internacional",
	"french":        "Cocina internacional",
	"chinese":       "Cocina internacional",
	"korean":        "Cocina internacional",
}

var hotelTagDict = map[string]string{
	"ryokan":        "Ryokan",
	"onsen":         "Ryokan",
	"guest_house":   "Albergue",
	"guesthouse":    "Albergue",
	"hostel":        "Albergue",
	"capsule":       "Hotel cápsula",
	"capsule_hotel": "Hotel cápsula",
	"hotel":         "Hotel de negocios",
	"business":      "Hotel de negocios",
	"motel":         "Hotel de negocios",
	"luxury":        "Hotel de lujo",
	"resort":        "Hotel de lujo",
	"apartment":     "Apartamento",
	"apartments":    "Apartamento",
	"aparthotel":    "Apartamento",
}

var generalTagDict = map[string]string{
	"museum":             "Cultural",
	"temple":             "Cultural",
	"shrine":             "Cultural",
	"tourist_attraction": "Cultural",
	"historic":           "Cultural",
	"park":               "Naturaleza",
	"garden":             "Naturaleza",
	"natural_feature":    "Naturaleza",
	"mountain":           "Naturaleza",
	"restaurant":         "Gastronomía",
	"food":               "Gastronomía",
	"cafe":               "Gastronomía",
	"amusement_park":     "Familiar",
	"zoo":                "Familiar",
	"aquarium":           "Familiar",
	"spa":                "Romántico",
	"onsen":              "Romántico",
	"hiking":             "Aventura",
	"climbing":           "Aventura",
	"shopping_mall":      "Compras",
	"market":             "Compras",
	"store":              "Compras",
	"night_club":         "Vida nocturna",
	"bar":                "Vida nocturna",
	"karaoke":            "Vida nocturna",
}

// mapTags normalizes raw tokens through dict, de-duplicates, and caps the
// result. Unmapped tokens are dropped.
func mapTags(raw []string, dict map[string]string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, tok := range raw {
		canon, ok := dict[strings.ToLower(strings.TrimSpace(tok))]
		if !ok {
			continue
		}
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		out = append(out, canon)
		if len(out) == limit {
			break
		}
	}
	return out
}

// MapGeneralTags maps raw provider tokens onto the general vocabulary. The
// general group has no default; it may legitimately stay empty.
func MapGeneralTags(raw []string) []string {
	return mapTags(raw, generalTagDict, 3)
}

func MapAttractionTags(raw []string) domain.AttractionTags {
	tags := mapTags(raw, attractionTagDict, maxAttractionTags)
	if len(tags) == 0 {
		tags = []string{defaultAttractionTag}
	}
	return domain.AttractionTags(tags)
}

func MapRestaurantTags(raw []string) domain.RestaurantTags {
	tags := mapTags(raw, restaurantTagDict, maxRestaurantTags)
	if len(tags) == 0 {
		tags = []string{defaultRestaurantTag}
	}
	return domain.RestaurantTags(tags)
}

func MapHotelTags(raw []string) domain.HotelTags {
	tags := mapTags(raw, hotelTagDict, maxHotelTags)
	if len(tags) == 0 {
		tags = []string{defaultHotelTag}
	}
	return domain.HotelTags(tags)
}

// MapCategoryTags dispatches to the group matching the category.
func MapCategoryTags(category domain.Category, raw []string) domain.CategoryTags {
	switch category {
	case domain.CategoryRestaurant:
		return MapRestaurantTags(raw)
	case domain.CategoryHotel:
		return MapHotelTags(raw)
	default:
		return MapAttractionTags(raw)
	}
}

// MapBudgetTags derives the single budget tag from the ordinal price level
// (not from free text). Cardinality is capped at one.
func MapBudgetTags(source domain.Source, level *int) []string {
	return []string{BudgetForLevel(source, level)}
}
