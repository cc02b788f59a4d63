package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "tabito/internal/adapters/redis"
	"tabito/internal/domain"
)

func newTestCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0), mr
}

func TestCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	in := domain.Experience{
		Title:      "Templo Kinkaku-ji",
		Category:   domain.CategoryAttraction,
		Region:     "Kansai",
		Prefecture: "Kyoto",
		Price:      500,
		Tags:       domain.AttractionTags{"Templos y santuarios"},
		BudgetTags: []string{"Gratis"},
	}
	if err := cache.Set(ctx, "experience:1", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out domain.Experience
	ok, err := cache.Get(ctx, "experience:1", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Title != in.Title || out.Prefecture != in.Prefecture || out.Price != in.Price {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	// category tags survive serialization as their concrete group
	at, isAttraction := out.Tags.(domain.AttractionTags)
	if !isAttraction || len(at) != 1 || at[0] != "Templos y santuarios" {
		t.Fatalf("tags did not round trip: %#v", out.Tags)
	}
}

func TestCache_MissIsNotAnError(t *testing.T) {
	cache, _ := newTestCache(t)

	var out string
	ok, err := cache.Get(context.Background(), "nope", &out)
	if err != nil {
		t.Fatalf("miss must be err-free: %v", err)
	}
	if ok {
		t.Fatal("missing key reported as hit")
	}
}

func TestCache_Del(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", "v", 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cache.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	var out string
	if ok, _ := cache.Get(ctx, "k", &out); ok {
		t.Fatal("deleted key still readable")
	}
}

func TestCache_TTLExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", 42, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var out int
	if ok, _ := cache.Get(ctx, "k", &out); ok {
		t.Fatal("key should have expired")
	}
}
