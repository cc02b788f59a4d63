package domain

import "encoding/json"

// Source identifies which external search provider a record came from.
type Source string

const (
	SourcePlaces Source = "places"
	SourceOSM    Source = "osm"
)

// Category is one of the three fixed experience categories.
type Category string

const (
	CategoryHotel      Category = "Hoteles"
	CategoryAttraction Category = "Atracciones"
	CategoryRestaurant Category = "Restaurantes"
)

// RawPlace is one provider result as returned by a SearchProvider. Fields is
// the provider payload as-is; transformers read it through alias registries
// because the two providers (and their mock fallbacks) disagree on shape.
type RawPlace struct {
	Source Source
	ID     string
	Fields map[string]any
}

// ExternalIDs carries the provider identity keys used for deduplication.
// A candidate can hold both when it was enriched from both providers.
type ExternalIDs struct {
	PlaceID string `json:"placeId,omitempty"`
	OSMID   string `json:"osmId,omitempty"`
}

// CategoryTags is the per-category tag group. Exactly one variant is
// populated on an Experience, matching its Category; the other two are absent.
type CategoryTags interface {
	TagCategory() Category
	Values() []string
}

type AttractionTags []string

func (AttractionTags) TagCategory() Category { return CategoryAttraction }
func (t AttractionTags) Values() []string    { return t }

type RestaurantTags []string

func (RestaurantTags) TagCategory() Category { return CategoryRestaurant }
func (t RestaurantTags) Values() []string    { return t }

type HotelTags []string

func (HotelTags) TagCategory() Category { return CategoryHotel }
func (t HotelTags) Values() []string    { return t }

// Experience is the canonical staging shape of an imported place. Values are
// never mutated after the transformer builds one; re-cleaning produces a new
// value.
type Experience struct {
	Title       string       `json:"title"`
	Caption     string       `json:"caption"`
	Slug        string       `json:"slug"`
	Category    Category     `json:"category"`
	Region      string       `json:"region"`
	Prefecture  string       `json:"prefecture"`
	Price       int64        `json:"price"` // yen, >= 0
	Lat         *float64     `json:"lat,omitempty"`
	Lon         *float64     `json:"lon,omitempty"`
	Phone       *string      `json:"phone,omitempty"`
	Website     *string      `json:"website,omitempty"`
	Address     *string      `json:"address,omitempty"`
	Schedule    string       `json:"schedule,omitempty"`
	Rating      float64      `json:"rating"`
	ReviewCount int          `json:"reviewCount"`
	Approved    bool         `json:"approved"`
	GeneralTags []string     `json:"generalTags"`
	BudgetTags  []string     `json:"budgetTags"`
	Tags        CategoryTags `json:"-"`
	ExternalIDs ExternalIDs  `json:"externalIds"`
	ImageURL    *string      `json:"imageUrl,omitempty"`
}

// CategoryTagValues returns the active per-category tag list, or nil when the
// candidate carries none yet.
func (e Experience) CategoryTagValues() []string {
	if e.Tags == nil {
		return nil
	}
	return e.Tags.Values()
}

// experienceJSON flattens the CategoryTags sum type into one field per
// variant so candidates survive the cache and the admin API round trip.
// Only the active variant is emitted.
type experienceJSON struct {
	experienceAlias
	AttractionTags []string `json:"attractionTags,omitempty"`
	RestaurantTags []string `json:"restaurantTags,omitempty"`
	HotelTags      []string `json:"hotelTags,omitempty"`
}

type experienceAlias Experience

func (e Experience) MarshalJSON() ([]byte, error) {
	aux := experienceJSON{experienceAlias: experienceAlias(e)}
	switch t := e.Tags.(type) {
	case AttractionTags:
		aux.AttractionTags = t
	case RestaurantTags:
		aux.RestaurantTags = t
	case HotelTags:
		aux.HotelTags = t
	}
	return json.Marshal(aux)
}

func (e *Experience) UnmarshalJSON(data []byte) error {
	var aux experienceJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Experience(aux.experienceAlias)
	switch {
	case len(aux.AttractionTags) > 0:
		e.Tags = AttractionTags(aux.AttractionTags)
	case len(aux.RestaurantTags) > 0:
		e.Tags = RestaurantTags(aux.RestaurantTags)
	case len(aux.HotelTags) > 0:
		e.Tags = HotelTags(aux.HotelTags)
	}
	return nil
}

// CatalogRecord is the persisted view of an experience as the store returns it.
type CatalogRecord struct {
	ID          int64
	Title       string
	Slug        string
	Category    Category
	Region      string
	Prefecture  string
	Price       int64
	Lat, Lon    *float64
	Rating      float64
	ReviewCount int
	Approved    bool
	ExternalIDs ExternalIDs
}
