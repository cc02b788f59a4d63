package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tabito/internal/adapters/observability"
	"tabito/internal/domain"
)

// MockIDPrefix marks synthetic results from the fallback list.
const MockIDPrefix = "mock-"

const maxElements = 20

// Client queries open geodata: a boundary lookup resolves the prefecture to a
// bounding box, then an overpass-style query fetches tagged elements inside
// it. Like the places client, any provider failure degrades to deterministic
// mock data.
type Client struct {
	overpassURL  string
	nominatimURL string
	hc           *http.Client
	cache        domain.Cache // optional; bounding boxes change rarely
	now          func() time.Time
}

type Option func(*Client)

// WithCache caches resolved bounding boxes.
func WithCache(c domain.Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithClock replaces the timestamp source that seeds mock data.
func WithClock(fn func() time.Time) Option {
	return func(cl *Client) { cl.now = fn }
}

func New(overpassURL, nominatimURL string, opts ...Option) *Client {
	c := &Client{
		overpassURL:  overpassURL,
		nominatimURL: nominatimURL,
		hc:           &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// boundingBox is (south, west, north, east).
type boundingBox [4]float64

// Static fallbacks when the boundary lookup is unreachable.
var fallbackBoxes = map[string]boundingBox{
	"Tokio":     {35.53, 139.56, 35.82, 139.92},
	"Kyoto":     {34.87, 135.56, 35.16, 135.88},
	"Osaka":     {34.57, 135.33, 34.77, 135.60},
	"Kanagawa":  {35.30, 139.45, 35.55, 139.75},
	"Hokkaido":  {42.90, 141.20, 43.20, 141.50},
	"Hiroshima": {34.32, 132.38, 34.48, 132.55},
	"Fukuoka":   {33.52, 130.32, 33.67, 130.48},
	"Nara":      {34.63, 135.77, 34.72, 135.87},
	"Aichi":     {35.05, 136.80, 35.25, 137.00},
	"Ishikawa":  {36.52, 136.60, 36.62, 136.70},
}

// queryFilters maps Spanish query terms onto overpass tag filters.
var queryFilters = map[string]string{
	"hoteles":      `["tourism"~"hotel|hostel|guest_house|ryokan"]`,
	"hotel":        `["tourism"~"hotel|hostel|guest_house|ryokan"]`,
	"alojamiento":  `["tourism"~"hotel|hostel|guest_house|ryokan"]`,
	"restaurantes": `["amenity"~"restaurant|cafe|fast_food|izakaya"]`,
	"restaurante":  `["amenity"~"restaurant|cafe|fast_food|izakaya"]`,
	"comida":       `["amenity"~"restaurant|cafe|fast_food"]`,
	"cafeterías":   `["amenity"="cafe"]`,
	"cafeterias":   `["amenity"="cafe"]`,
	"bares":        `["amenity"~"bar|pub"]`,
	"museos":       `["tourism"="museum"]`,
	"museo":        `["tourism"="museum"]`,
	"templos":      `["amenity"="place_of_worship"]`,
	"santuarios":   `["amenity"="place_of_worship"]`,
	"castillos":    `["historic"="castle"]`,
	"parques":      `["leisure"~"park|garden"]`,
	"jardines":     `["leisure"="garden"]`,
	"atracciones":  `["tourism"~"attraction|viewpoint|museum"]`,
	"monumentos":   `["historic"~"monument|memorial|castle"]`,
}

const defaultFilter = `["tourism"~"attraction|viewpoint|museum"]`

func filterFor(query string) string {
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if f, ok := queryFilters[w]; ok {
			return f
		}
	}
	return defaultFilter
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *struct{ Lat, Lon float64 }
	Tags   map[string]string `json:"tags"`
}

// Search runs a geo-bounded overpass query. Zero matching elements is the
// "no results" case (empty list, nil error); provider failures fall back to
// mock data.
func (c *Client) Search(ctx context.Context, query, prefecture string) ([]domain.RawPlace, error) {
	box := c.boundingBoxFor(ctx, prefecture)

	filter := filterFor(query)
	ql := fmt.Sprintf(
		"[out:json][timeout:25];(node%s(%f,%f,%f,%f);way%s(%f,%f,%f,%f););out center %d;",
		filter, box[0], box[1], box[2], box[3],
		filter, box[0], box[1], box[2], box[3],
		maxElements,
	)

	form := url.Values{}
	form.Set("data", ql)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return c.mockResults(query, prefecture), nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "tabito-importer/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("prefecture", prefecture).Msg("overpass query failed, using mock data")
		observability.ObserveFallback(string(domain.SourceOSM), "transport")
		return c.mockResults(query, prefecture), nil
	}
	defer resp.Body.Close()
	observability.ObserveExternal("overpass", "/api/interpreter", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("overpass non-OK status, using mock data")
		observability.ObserveFallback(string(domain.SourceOSM), "status")
		return c.mockResults(query, prefecture), nil
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		observability.ObserveFallback(string(domain.SourceOSM), "transport")
		return c.mockResults(query, prefecture), nil
	}

	out := make([]domain.RawPlace, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		if el.Tags == nil || el.Tags["name"] == "" {
			continue
		}
		out = append(out, c.mapElement(el, prefecture))
		if len(out) == maxElements {
			break
		}
	}
	return out, nil
}

// Details is a no-op: the geodata source has no enrichment endpoint.
func (c *Client) Details(ctx context.Context, id string) (domain.RawPlace, bool) {
	return domain.RawPlace{}, false
}

// mapElement turns an overpass element into a RawPlace. The source has no
// native rating or price fields, so both are synthesized from structural
// signals before the transformer sees the record.
func (c *Client) mapElement(el overpassElement, prefecture string) domain.RawPlace {
	id := fmt.Sprintf("%s/%d", el.Type, el.ID)
	lat, lon := el.Lat, el.Lon
	if el.Center != nil {
		lat, lon = el.Center.Lat, el.Center.Lon
	}

	name := el.Tags["name"]
	if es := el.Tags["name:es"]; es != "" {
		name = es
	} else if en := el.Tags["name:en"]; en != "" {
		name = en
	}

	tokens := tagTokens(el.Tags)
	fields := map[string]any{
		"name":    name,
		"address": elementAddress(el.Tags, prefecture),
		"lat":     lat,
		"lon":     lon,
		"tags":    tokens,
		"rating":  syntheticRating(el.Tags),
	}
	if level, ok := syntheticPriceLevel(el.Tags); ok {
		fields["price_level"] = float64(level)
	}
	if v := el.Tags["phone"]; v != "" {
		fields["phone"] = v
	} else if v := el.Tags["contact:phone"]; v != "" {
		fields["phone"] = v
	}
	if v := el.Tags["website"]; v != "" {
		fields["website"] = v
	} else if v := el.Tags["contact:website"]; v != "" {
		fields["website"] = v
	}
	if v := el.Tags["opening_hours"]; v != "" {
		fields["schedule"] = v
	}

	return domain.RawPlace{Source: domain.SourceOSM, ID: id, Fields: fields}
}

// tagTokens flattens the tag values the canonicalizer understands:
// amenity/tourism/historic/leisure values plus the cuisine list.
func tagTokens(tags map[string]string) []string {
	var out []string
	for _, key := range []string{"amenity", "tourism", "historic", "leisure", "shop"} {
		if v := tags[key]; v != "" {
			out = append(out, v)
		}
	}
	if cuisine := tags["cuisine"]; cuisine != "" {
		for _, c := range strings.Split(cuisine, ";") {
			out = append(out, strings.TrimSpace(c))
		}
	}
	return out
}

func elementAddress(tags map[string]string, prefecture string) string {
	parts := make([]string, 0, 4)
	for _, key := range []string{"addr:housenumber", "addr:street", "addr:city"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if prov := tags["addr:province"]; prov != "" {
		parts = append(parts, prov)
	} else {
		parts = append(parts, prefecture)
	}
	parts = append(parts, "Japan")
	return strings.Join(parts, ", ")
}

// syntheticRating scores completeness: well-maintained entries with contact
// data and hours tend to be real, active places.
func syntheticRating(tags map[string]string) float64 {
	rating := 3.5
	if tags["website"] != "" || tags["contact:website"] != "" {
		rating += 0.4
	}
	if tags["phone"] != "" || tags["contact:phone"] != "" {
		rating += 0.3
	}
	if tags["opening_hours"] != "" {
		rating += 0.3
	}
	if stars, err := strconv.Atoi(tags["stars"]); err == nil && stars >= 4 {
		rating += 0.5
	}
	if rating > 5.0 {
		rating = 5.0
	}
	return rating
}

// syntheticPriceLevel derives an ordinal level only when the element carries
// a usable signal (hotel star rating); otherwise the level stays absent and
// the price mapper applies this provider's default.
func syntheticPriceLevel(tags map[string]string) (int, bool) {
	if stars, err := strconv.Atoi(tags["stars"]); err == nil {
		level := stars - 1
		if level < 0 {
			level = 0
		}
		if level > 4 {
			level = 4
		}
		return level, true
	}
	return 0, false
}

type nominatimResult struct {
	BoundingBox []string `json:"boundingbox"` // [south, north, west, east]
}

// boundingBoxFor resolves the prefecture bounding box: cache, then the
// boundary lookup, then the static fallback table.
func (c *Client) boundingBoxFor(ctx context.Context, prefecture string) boundingBox {
	key := "bbox:" + prefecture
	if c.cache != nil {
		var cached boundingBox
		if ok, _ := c.cache.Get(ctx, key, &cached); ok {
			return cached
		}
	}

	if box, ok := c.lookupBoundary(ctx, prefecture); ok {
		if c.cache != nil {
			_ = c.cache.Set(ctx, key, box, 86400)
		}
		return box
	}

	if box, ok := fallbackBoxes[prefecture]; ok {
		return box
	}
	return fallbackBoxes["Tokio"]
}

func (c *Client) lookupBoundary(ctx context.Context, prefecture string) (boundingBox, bool) {
	q := url.Values{}
	q.Set("q", prefecture+", Japan")
	q.Set("format", "json")
	q.Set("limit", "1")
	u := fmt.Sprintf("%s/search?%s", c.nominatimURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return boundingBox{}, false
	}
	req.Header.Set("User-Agent", "tabito-importer/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return boundingBox{}, false
	}
	defer resp.Body.Close()
	observability.ObserveExternal("nominatim", "/search", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return boundingBox{}, false
	}
	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil || len(results) == 0 || len(results[0].BoundingBox) != 4 {
		return boundingBox{}, false
	}

	bb := results[0].BoundingBox
	south, err1 := strconv.ParseFloat(bb[0], 64)
	north, err2 := strconv.ParseFloat(bb[1], 64)
	west, err3 := strconv.ParseFloat(bb[2], 64)
	east, err4 := strconv.ParseFloat(bb[3], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return boundingBox{}, false
	}
	return boundingBox{south, west, north, east}, true
}
