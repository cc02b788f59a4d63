package places

import "strings"

// The provider index is English; admin queries arrive in Spanish. Each term
// is translated word-by-word before the search, unmapped words pass through
// unchanged.
var queryDictionary = map[string]string{
	"hoteles":      "hotels",
	"hotel":        "hotel",
	"alojamiento":  "accommodation",
	"ryokan":       "ryokan",
	"restaurantes": "restaurants",
	"restaurante":  "restaurant",
	"comida":       "food",
	"cafeterías":   "cafes",
	"cafeterias":   "cafes",
	"bares":        "bars",
	"atracciones":  "attractions",
	"atraccion":    "attraction",
	"atracción":    "attraction",
	"museos":       "museums",
	"museo":        "museum",
	"templos":      "temples",
	"templo":       "temple",
	"santuarios":   "shrines",
	"santuario":    "shrine",
	"castillos":    "castles",
	"castillo":     "castle",
	"parques":      "parks",
	"parque":       "park",
	"jardines":     "gardens",
	"jardín":       "garden",
	"mercados":     "markets",
	"mercado":      "market",
	"tiendas":      "shops",
	"compras":      "shopping",
	"monumentos":   "monuments",
}

// TranslateQuery maps Spanish query terms to English for better recall.
func TranslateQuery(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		if en, ok := queryDictionary[strings.ToLower(w)]; ok {
			words[i] = en
		}
	}
	return strings.Join(words, " ")
}
