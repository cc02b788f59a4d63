package osm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tabito/internal/adapters/osm"
	"tabito/internal/domain"
)

func fixedClock() time.Time { return time.Unix(1700000000, 0) }

// deadServer returns a URL that refuses connections.
func deadServer(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	u := ts.URL
	ts.Close()
	return u
}

func overpassPayload(elements ...map[string]any) []byte {
	b, _ := json.Marshal(map[string]any{"elements": elements})
	return b
}

func TestSearch_ParsesOverpassElements(t *testing.T) {
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		data := r.PostForm.Get("data")
		if !strings.Contains(data, `["amenity"~"restaurant|cafe|fast_food|izakaya"]`) {
			t.Errorf("restaurant query should select the amenity filter: %s", data)
		}
		_, _ = w.Write(overpassPayload(
			map[string]any{
				"type": "node", "id": 101, "lat": 34.98, "lon": 135.76,
				"tags": map[string]string{
					"name":          "Ramen Ichiban",
					"name:es":       "Ramen Ichiban Kioto",
					"amenity":       "restaurant",
					"cuisine":       "japanese;ramen",
					"phone":         "+81-75-000-0000",
					"website":       "https://ichiban.example.jp",
					"opening_hours": "Mo-Su 11:00-22:00",
					"addr:city":     "Kyoto",
				},
			},
			map[string]any{
				"type": "way", "id": 202,
				"center": map[string]any{"lat": 35.01, "lon": 135.77},
				"tags":   map[string]string{"name": "Izakaya Hana", "amenity": "izakaya"},
			},
			map[string]any{
				"type": "node", "id": 303, "lat": 35.0, "lon": 135.7,
				"tags": map[string]string{"amenity": "restaurant"}, // unnamed, skipped
			},
		))
	}))
	defer overpass.Close()

	cl := osm.New(overpass.URL, deadServer(t))
	out, err := cl.Search(context.Background(), "restaurantes", "Kyoto")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 named elements, got %d", len(out))
	}

	first := out[0]
	if first.ID != "node/101" || first.Source != domain.SourceOSM {
		t.Fatalf("unexpected identity: %+v", first)
	}
	if first.Fields["name"] != "Ramen Ichiban Kioto" {
		t.Fatalf("name:es should win: %v", first.Fields["name"])
	}
	tokens, _ := first.Fields["tags"].([]string)
	want := []string{"restaurant", "japanese", "ramen"}
	if len(tokens) != len(want) {
		t.Fatalf("tag tokens = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("tag tokens = %v, want %v", tokens, want)
		}
	}
	// website + phone + hours on top of the 3.5 base
	if r, _ := first.Fields["rating"].(float64); r < 4.49 || r > 4.51 {
		t.Fatalf("synthetic rating = %v, want 4.5", r)
	}
	if _, present := first.Fields["price_level"]; present {
		t.Fatal("no price signal means no price_level field")
	}
	if addr, _ := first.Fields["address"].(string); !strings.Contains(addr, "Kyoto") || !strings.Contains(addr, "Japan") {
		t.Fatalf("address should include prefecture and country: %q", addr)
	}

	second := out[1]
	if second.ID != "way/202" {
		t.Fatalf("way id mismatch: %s", second.ID)
	}
	if lat, _ := second.Fields["lat"].(float64); lat != 35.01 {
		t.Fatalf("way should use its center coordinates, lat = %v", lat)
	}
}

func TestSearch_StarsDerivePriceLevel(t *testing.T) {
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(overpassPayload(map[string]any{
			"type": "node", "id": 7, "lat": 35.0, "lon": 139.7,
			"tags": map[string]string{"name": "Grand Hotel", "tourism": "hotel", "stars": "4"},
		}))
	}))
	defer overpass.Close()

	cl := osm.New(overpass.URL, deadServer(t))
	out, err := cl.Search(context.Background(), "hoteles", "Tokio")
	if err != nil || len(out) != 1 {
		t.Fatalf("search: %v (%d results)", err, len(out))
	}
	if lvl, _ := out[0].Fields["price_level"].(float64); lvl != 3 {
		t.Fatalf("4 stars should map to level 3, got %v", out[0].Fields["price_level"])
	}
	if r, _ := out[0].Fields["rating"].(float64); r != 4.0 {
		t.Fatalf("4+ stars adds 0.5 to the base rating, got %v", r)
	}
}

func TestSearch_TransportErrorFallsBackToMock(t *testing.T) {
	dead := deadServer(t)
	cl := osm.New(dead, dead, osm.WithClock(fixedClock))

	out, err := cl.Search(context.Background(), "restaurantes", "Kyoto")
	if err != nil {
		t.Fatalf("fallback must not surface an error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("mock fallback must be non-empty")
	}
	for _, r := range out {
		if !strings.HasPrefix(r.ID, osm.MockIDPrefix) {
			t.Fatalf("mock id %q missing prefix", r.ID)
		}
		if _, present := r.Fields["price_level"]; present {
			t.Fatal("mock geodata carries no price_level, the provider default applies")
		}
	}
}

func TestSearch_EmptyOverpassResultIsEmptyNotMock(t *testing.T) {
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(overpassPayload())
	}))
	defer overpass.Close()

	cl := osm.New(overpass.URL, deadServer(t))
	out, err := cl.Search(context.Background(), "museos", "Nara")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("zero elements must yield an empty list, got %d", len(out))
	}
}

func TestSearch_BoundaryLookupFeedsTheQuery(t *testing.T) {
	var gotData string
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotData = r.PostForm.Get("data")
		_, _ = w.Write(overpassPayload())
	}))
	defer overpass.Close()

	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "Okinawa, Japan" {
			t.Errorf("boundary query = %q", q)
		}
		_, _ = w.Write([]byte(`[{"boundingbox":["26.07","26.89","127.65","128.33"]}]`))
	}))
	defer nominatim.Close()

	cl := osm.New(overpass.URL, nominatim.URL)
	if _, err := cl.Search(context.Background(), "atracciones", "Okinawa"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(gotData, "26.070000,127.650000,26.890000,128.330000") {
		t.Fatalf("resolved box should appear as south,west,north,east: %s", gotData)
	}
}

func TestSearch_BoundaryFallsBackToStaticBox(t *testing.T) {
	var gotData string
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotData = r.PostForm.Get("data")
		_, _ = w.Write(overpassPayload())
	}))
	defer overpass.Close()

	cl := osm.New(overpass.URL, deadServer(t))
	if _, err := cl.Search(context.Background(), "templos", "Kyoto"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(gotData, "34.870000,135.560000") {
		t.Fatalf("static Kyoto box expected in query: %s", gotData)
	}
}

// memCache is a minimal in-process Cache for bbox caching tests.
type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memCache) Del(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestSearch_BoundingBoxIsCached(t *testing.T) {
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(overpassPayload())
	}))
	defer overpass.Close()

	var lookups int32
	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&lookups, 1)
		_, _ = w.Write([]byte(`[{"boundingbox":["34.87","35.16","135.56","135.88"]}]`))
	}))
	defer nominatim.Close()

	cl := osm.New(overpass.URL, nominatim.URL, osm.WithCache(newMemCache()))
	for i := 0; i < 3; i++ {
		if _, err := cl.Search(context.Background(), "museos", "Kyoto"); err != nil {
			t.Fatalf("search: %v", err)
		}
	}
	if n := atomic.LoadInt32(&lookups); n != 1 {
		t.Fatalf("boundary lookup should run once then hit the cache, ran %d times", n)
	}
}

func TestDetails_IsAlwaysUnavailable(t *testing.T) {
	cl := osm.New("http://unused.invalid", "http://unused.invalid")
	if _, ok := cl.Details(context.Background(), "node/1"); ok {
		t.Fatal("geodata source has no detail endpoint")
	}
}
