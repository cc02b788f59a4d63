package app

import (
	"strings"
	"testing"

	"tabito/internal/domain"
)

func validCandidate() domain.Experience {
	return domain.Experience{
		Title:       "Templo Kinkaku-ji",
		Slug:        "templo-kinkaku-ji-1-abc",
		Category:    domain.CategoryAttraction,
		Region:      "Kansai",
		Prefecture:  "Kyoto",
		Price:       500,
		GeneralTags: []string{"Cultural"},
		BudgetTags:  []string{"Económico"},
		Tags:        domain.AttractionTags{"Templos y santuarios"},
	}
}

func TestValidate_OK(t *testing.T) {
	if errs := Validate(validCandidate()); len(errs) != 0 {
		t.Fatalf("expected valid candidate, got %v", errs)
	}
}

func TestValidate_InvalidAttractionTag(t *testing.T) {
	e := validCandidate()
	e.Tags = domain.AttractionTags{"NotARealTag"}
	errs := Validate(e)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one violation, got %v", errs)
	}
	if !strings.Contains(errs[0], "NotARealTag") || !strings.Contains(errs[0], "attraction") {
		t.Fatalf("violation should identify the invalid attraction tag: %s", errs[0])
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	e := validCandidate()
	e.GeneralTags = []string{"Bogus"}
	e.BudgetTags = []string{"Carísimo"}
	e.Tags = domain.AttractionTags{"Fake"}
	e.Price = -100
	errs := Validate(e)
	if len(errs) != 4 {
		t.Fatalf("expected 4 violations collected in one call, got %d: %v", len(errs), errs)
	}
}

func TestValidate_RegionPrefectureConsistency(t *testing.T) {
	e := validCandidate()
	e.Region = "Kanto" // Kyoto is Kansai
	errs := Validate(e)
	if len(errs) != 1 || !strings.Contains(errs[0], "Kansai") {
		t.Fatalf("expected gazetteer mismatch violation, got %v", errs)
	}

	e = validCandidate()
	e.Prefecture = "Atlantis"
	if errs := Validate(e); len(errs) != 1 {
		t.Fatalf("expected unknown-prefecture violation, got %v", errs)
	}
}

func TestValidate_CategoryTagGroupMismatch(t *testing.T) {
	e := validCandidate()
	e.Tags = domain.RestaurantTags{"Sushi"}
	errs := Validate(e)
	if len(errs) != 1 {
		t.Fatalf("expected tag-group/category mismatch, got %v", errs)
	}
}
