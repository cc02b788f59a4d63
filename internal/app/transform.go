package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tabito/internal/domain"
)

/********** alias registries (single source of truth) **********/

// The two providers (and their mock fallbacks) name the same field
// differently; transformation reads everything through these alias sets with
// dot-path lookups instead of assuming one payload shape.
var placeAliases = map[string][]string{
	"title":    {"name", "title"},
	"address":  {"formatted_address", "vicinity", "address", "addr_full"},
	"phone":    {"formatted_phone_number", "international_phone_number", "phone", "contact_phone"},
	"website":  {"website", "url", "contact_website"},
	"schedule": {"schedule", "opening_hours_text"},
	"photo":    {"photo_url", "thumbnail", "image"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstAlias returns the first non-empty string among the alias paths for key.
func firstAlias(m map[string]any, key string) string {
	for _, p := range placeAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// floatAt reads a number at any of the paths (JSON float64, int, or a string
// with comma decimals).
func floatAt(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func intAt(m map[string]any, paths ...string) *int {
	if f := floatAt(m, paths...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

// stringsAt accepts []any of strings or []string at any of the paths.
func stringsAt(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		switch raw := lookupAny(m, k).(type) {
		case []string:
			if len(raw) > 0 {
				return raw
			}
		case []any:
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				if s, ok := it.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

/********** slug **********/

// Slugify derives a globally unique slug from the title: lowercased ASCII-ish
// title, the import timestamp, and a short random suffix against collisions.
func Slugify(title string, now time.Time) string {
	base := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := true
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == 'á', r == 'à', r == 'ä':
			b.WriteByte('a')
			lastDash = false
		case r == 'é', r == 'è':
			b.WriteByte('e')
			lastDash = false
		case r == 'í':
			b.WriteByte('i')
			lastDash = false
		case r == 'ó', r == 'ö':
			b.WriteByte('o')
			lastDash = false
		case r == 'ú', r == 'ü':
			b.WriteByte('u')
			lastDash = false
		case r == 'ñ':
			b.WriteByte('n')
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "experiencia"
	}
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s-%d-%s", slug, now.Unix(), suffix)
}

/********** transformer **********/

// Transformer turns one raw provider record into a canonical candidate for a
// category, composing location detection, price mapping, and tag
// canonicalization. It never mutates the raw record.
type Transformer struct {
	Source domain.Source
	Now    func() time.Time
}

func NewTransformer(source domain.Source) *Transformer {
	return &Transformer{Source: source, Now: time.Now}
}

// Transform builds the canonical candidate. A missing title is the one fatal
// transform error; everything else degrades to defaults.
func (t *Transformer) Transform(raw domain.RawPlace, category domain.Category) (domain.Experience, error) {
	title := strings.TrimSpace(firstAlias(raw.Fields, "title"))
	if title == "" {
		return domain.Experience{}, fmt.Errorf("record %s has no usable title", raw.ID)
	}

	address := firstAlias(raw.Fields, "address")
	region, prefecture := DetectLocation(address)

	level := intAt(raw.Fields, "price_level", "priceLevel")
	rawTags := stringsAt(raw.Fields, "types", "tags", "categories")

	rating := 4.0
	if f := floatAt(raw.Fields, "rating", "score"); f != nil {
		rating = *f
	}
	reviews := 0
	if n := intAt(raw.Fields, "user_ratings_total", "review_count", "reviews"); n != nil {
		reviews = *n
	}

	lat := floatAt(raw.Fields, "geometry.location.lat", "lat", "latitude")
	lon := floatAt(raw.Fields, "geometry.location.lng", "lon", "lng", "longitude")

	schedule := firstAlias(raw.Fields, "schedule")
	if schedule == "" {
		if lines := stringsAt(raw.Fields, "opening_hours.weekday_text", "opening_hours_lines"); lines != nil {
			schedule = strings.Join(lines, "; ")
		}
	}

	caption := strings.TrimSpace(lookupStr(raw.Fields, "caption"))
	if caption == "" {
		caption = fmt.Sprintf("Descubre %s en %s", title, prefecture)
	}

	e := domain.Experience{
		Title:       title,
		Caption:     caption,
		Slug:        Slugify(title, t.Now()),
		Category:    category,
		Region:      region,
		Prefecture:  prefecture,
		Price:       PriceForLevel(t.Source, category, level),
		Lat:         lat,
		Lon:         lon,
		Phone:       ptrStr(firstAlias(raw.Fields, "phone")),
		Website:     ptrStr(firstAlias(raw.Fields, "website")),
		Address:     ptrStr(address),
		Schedule:    schedule,
		Rating:      rating,
		ReviewCount: reviews,
		Approved:    false, // imports always await admin review
		GeneralTags: MapGeneralTags(rawTags),
		BudgetTags:  MapBudgetTags(t.Source, level),
		Tags:        MapCategoryTags(category, rawTags),
		ImageURL:    ptrStr(firstAlias(raw.Fields, "photo")),
	}

	switch t.Source {
	case domain.SourceOSM:
		e.ExternalIDs.OSMID = raw.ID
	default:
		e.ExternalIDs.PlaceID = raw.ID
	}
	return e, nil
}

// Clean re-derives the dependent fields of an already-edited candidate so a
// reviewed preview goes through the same canonicalization as a fresh record:
// tags are re-mapped against the vocabularies, location is re-checked, and a
// missing slug is generated.
func (t *Transformer) Clean(e domain.Experience) domain.Experience {
	out := e
	if out.Region == "" || out.Prefecture == "" {
		addr := ""
		if out.Address != nil {
			addr = *out.Address
		}
		out.Region, out.Prefecture = DetectLocation(addr)
	} else if region, ok := PrefectureRegion(out.Prefecture); ok {
		out.Region = region
	}
	if out.Slug == "" {
		out.Slug = Slugify(out.Title, t.Now())
	}
	if out.Tags == nil {
		out.Tags = MapCategoryTags(out.Category, nil)
	}
	if len(out.BudgetTags) == 0 {
		out.BudgetTags = MapBudgetTags(t.Source, nil)
	}
	if out.Price < 0 {
		out.Price = 0
	}
	return out
}
