package places

import (
	"fmt"
	"hash/fnv"
	"strings"

	"tabito/internal/domain"
)

const mockResultCount = 5

// mockNames keeps titles deterministic per (query kind, prefecture) so
// repeated imports of the same query dedupe against each other even when the
// provider is down.
var mockNames = map[string][]string{
	"hotels": {
		"Hotel Sakura", "Ryokan Tradicional", "Business Inn Central",
		"Capsule Stay Station", "Grand Palace Hotel",
	},
	"restaurants": {
		"Sushi Matsu", "Ramen Ichiban", "Izakaya del Centro",
		"Tempura Koyama", "Café Momiji",
	},
	"attractions": {
		"Templo Antiguo", "Castillo Historico", "Museo de la Ciudad",
		"Jardin Botanico", "Mirador Panoramico",
	},
}

var mockTypes = map[string][]string{
	"hotels":      {"hotel", "lodging"},
	"restaurants": {"restaurant", "food"},
	"attractions": {"tourist_attraction", "museum"},
}

func mockKind(query string) string {
	q := strings.ToLower(TranslateQuery(query))
	switch {
	case strings.Contains(q, "hotel") || strings.Contains(q, "ryokan") || strings.Contains(q, "accommodation"):
		return "hotels"
	case strings.Contains(q, "restaurant") || strings.Contains(q, "food") || strings.Contains(q, "cafe") || strings.Contains(q, "bar"):
		return "restaurants"
	default:
		return "attractions"
	}
}

// mockResults builds the deterministic fallback list. Field shape mirrors a
// live search result so the transformer cannot tell them apart; ids carry the
// mock prefix plus the seed timestamp so Details never calls out for them.
func (c *Client) mockResults(query, prefecture string) []domain.RawPlace {
	kind := mockKind(query)
	seed := mockSeed(query, prefecture)
	stamp := c.now().Unix()

	out := make([]domain.RawPlace, 0, mockResultCount)
	for i := 0; i < mockResultCount; i++ {
		name := fmt.Sprintf("%s %s", mockNames[kind][i], prefecture)
		id := fmt.Sprintf("%s%x-%d-%d", MockIDPrefix, seed, stamp, i)
		types := make([]any, 0, len(mockTypes[kind]))
		for _, t := range mockTypes[kind] {
			types = append(types, t)
		}
		fields := map[string]any{
			"place_id":           id,
			"name":               name,
			"formatted_address":  fmt.Sprintf("%d-%d Chome, %s, Japan", i+1, (int(seed)+i)%9+1, prefecture),
			"types":              types,
			"price_level":        float64((int(seed>>4) + i) % 5),
			"rating":             3.5 + float64((int(seed)+i)%15)/10.0,
			"user_ratings_total": float64(50 + (int(seed>>8)+i*37)%450),
			"geometry": map[string]any{
				"location": map[string]any{
					"lat": 35.0 + float64(int(seed)%1000)/10000.0 + float64(i)/1000.0,
					"lng": 135.0 + float64(int(seed>>10)%1000)/10000.0 + float64(i)/1000.0,
				},
			},
		}
		out = append(out, domain.RawPlace{Source: domain.SourcePlaces, ID: id, Fields: fields})
	}
	return out
}

func mockSeed(query, prefecture string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(query)))
	_, _ = h.Write([]byte("|"))
	_, _ = h.Write([]byte(strings.ToLower(prefecture)))
	return h.Sum32()
}
