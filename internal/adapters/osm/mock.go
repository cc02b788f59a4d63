package osm

import (
	"fmt"
	"hash/fnv"
	"strings"

	"tabito/internal/domain"
)

const mockResultCount = 5

var mockNames = map[string][]string{
	"hoteles": {
		"Minshuku Yamada", "Ryokan Kawaguchi", "Hostal Estación",
		"Hotel Puente Viejo", "Pensión Koyama",
	},
	"restaurantes": {
		"Soba Takahashi", "Curry House Kito", "Udon Marugame",
		"Teishoku Aoba", "Kissaten Hoshi",
	},
	"atracciones": {
		"Santuario del Bosque", "Pagoda de Cinco Pisos", "Puerta Torii",
		"Jardin del Estanque", "Ruinas del Castillo",
	},
}

var mockTokens = map[string][]string{
	"hoteles":      {"guest_house"},
	"restaurantes": {"restaurant", "noodles"},
	"atracciones":  {"shrine", "historic"},
}

func mockKind(query string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "hotel") || strings.Contains(q, "alojamiento") || strings.Contains(q, "ryokan"):
		return "hoteles"
	case strings.Contains(q, "restaurante") || strings.Contains(q, "comida") || strings.Contains(q, "cafeter") || strings.Contains(q, "bar"):
		return "restaurantes"
	default:
		return "atracciones"
	}
}

// mockResults mirrors the shape mapElement produces. Titles are stable per
// (query kind, prefecture); ids carry the mock prefix and seed timestamp.
func (c *Client) mockResults(query, prefecture string) []domain.RawPlace {
	kind := mockKind(query)
	seed := mockSeed(query, prefecture)
	stamp := c.now().Unix()

	out := make([]domain.RawPlace, 0, mockResultCount)
	for i := 0; i < mockResultCount; i++ {
		id := fmt.Sprintf("%s%x-%d-%d", MockIDPrefix, seed, stamp, i)
		fields := map[string]any{
			"name":    fmt.Sprintf("%s %s", mockNames[kind][i], prefecture),
			"address": fmt.Sprintf("%d Chome, %s, Japan", i+1, prefecture),
			"lat":     34.5 + float64(int(seed)%1000)/10000.0 + float64(i)/1000.0,
			"lon":     134.5 + float64(int(seed>>10)%1000)/10000.0 + float64(i)/1000.0,
			"tags":    mockTokens[kind],
			"rating":  3.6 + float64((int(seed)+i)%12)/10.0,
		}
		out = append(out, domain.RawPlace{Source: domain.SourceOSM, ID: id, Fields: fields})
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
