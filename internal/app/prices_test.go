package app

import (
	"testing"

	"tabito/internal/domain"
)

func level(n int) *int { return &n }

func TestPriceForLevel_Monotonic(t *testing.T) {
	sources := []domain.Source{domain.SourcePlaces, domain.SourceOSM}
	categories := []domain.Category{domain.CategoryHotel, domain.CategoryAttraction, domain.CategoryRestaurant}

	for _, src := range sources {
		for _, cat := range categories {
			prev := int64(-1)
			for l := 0; l <= 4; l++ {
				p := PriceForLevel(src, cat, level(l))
				if p < prev {
					t.Errorf("%s/%s: price(%d)=%d < price(%d)=%d", src, cat, l, p, l-1, prev)
				}
				if p < 0 {
					t.Errorf("%s/%s: negative price at level %d", src, cat, l)
				}
				prev = p
			}
		}
	}
}

func TestPriceForLevel_AsymmetricDefaults(t *testing.T) {
	// places defaults to level 2, osm to level 1; both quirks are intentional.
	got := PriceForLevel(domain.SourcePlaces, domain.CategoryRestaurant, nil)
	want := PriceForLevel(domain.SourcePlaces, domain.CategoryRestaurant, level(2))
	if got != want {
		t.Fatalf("places default = %d, want level-2 amount %d", got, want)
	}

	got = PriceForLevel(domain.SourceOSM, domain.CategoryRestaurant, nil)
	want = PriceForLevel(domain.SourceOSM, domain.CategoryRestaurant, level(1))
	if got != want {
		t.Fatalf("osm default = %d, want level-1 amount %d", got, want)
	}
}

func TestPriceForLevel_ClampsOutOfRange(t *testing.T) {
	lo := PriceForLevel(domain.SourcePlaces, domain.CategoryHotel, level(-3))
	if lo != PriceForLevel(domain.SourcePlaces, domain.CategoryHotel, level(0)) {
		t.Fatalf("negative level should clamp to 0, got %d", lo)
	}
	hi := PriceForLevel(domain.SourcePlaces, domain.CategoryHotel, level(9))
	if hi != PriceForLevel(domain.SourcePlaces, domain.CategoryHotel, level(4)) {
		t.Fatalf("oversized level should clamp to 4, got %d", hi)
	}
}

func TestBudgetForLevel_Labels(t *testing.T) {
	if got := BudgetForLevel(domain.SourcePlaces, level(0)); got != "Gratis" {
		t.Fatalf("BudgetForLevel(0) = %s, want Gratis", got)
	}
	if got := BudgetForLevel(domain.SourcePlaces, level(2)); got != "Económico" {
		t.Fatalf("BudgetForLevel(2) = %s, want Económico", got)
	}
	if got := BudgetForLevel(domain.SourcePlaces, level(4)); got != "Lujo" {
		t.Fatalf("BudgetForLevel(4) = %s, want Lujo", got)
	}
	// osm default level is 1, which also reads Económico
	if got := BudgetForLevel(domain.SourceOSM, nil); got != "Económico" {
		t.Fatalf("osm default budget = %s, want Económico", got)
	}
}
