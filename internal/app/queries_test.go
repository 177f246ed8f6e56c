package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"hostaway_sync/internal/app"
	"hostaway_sync/internal/domain"
	"hostaway_sync/internal/storage/memory"
)

func seededQueries(t *testing.T) (*app.QueryService, *memory.Store, *memory.Cache) {
	t.Helper()
	store := memory.NewStore()
	store.Put(domain.Property{ListingID: "1", Slug: "beach-house", Title: "Beach House", City: "Lisbon", Country: "Portugal", Guests: 4, Amenities: []string{"WiFi", "Pool"}})
	store.Put(domain.Property{ListingID: "2", Slug: "attic", Title: "Attic", City: "Porto", Country: "Portugal", Guests: 2, Amenities: []string{"WiFi"}})
	store.Put(domain.Property{ListingID: "3", Slug: "chalet", Title: "Chalet", City: "Zermatt", Country: "Switzerland", Guests: 8})
	cache := memory.NewCache()
	return app.NewQueryService(store, cache, time.Minute), store, cache
}

func titles(ps []domain.Property) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Title)
	}
	return out
}

func TestQueryService_Search(t *testing.T) {
	q, _, _ := seededQueries(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		query domain.SearchQuery
		want  []string
	}{
		{"all, by title", domain.SearchQuery{}, []string{"Attic", "Beach House", "Chalet"}},
		{"country substring, any case", domain.SearchQuery{Location: " portu "}, []string{"Attic", "Beach House"}},
		{"infants do not count", domain.SearchQuery{Adults: 2, Children: 1, Infants: 3}, []string{"Beach House", "Chalet"}},
		{"every amenity required", domain.SearchQuery{Amenities: []string{"WiFi", " Pool", ""}}, []string{"Beach House"}},
		{"no match", domain.SearchQuery{Location: "Oslo"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := q.Search(ctx, tc.query)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got := titles(res.Items); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			if res.Count != len(tc.want) || res.TotalInStore != 3 {
				t.Fatalf("unexpected counts: %+v", res)
			}
		})
	}
}

func TestQueryService_GetBySlugUsesCache(t *testing.T) {
	q, store, cache := seededQueries(t)
	ctx := context.Background()

	p, err := q.GetBySlug(ctx, "attic")
	if err != nil || p.ListingID != "2" {
		t.Fatalf("got %+v err=%v", p, err)
	}
	if !cache.Has("property:attic") {
		t.Fatalf("expected cache fill")
	}

	// a store change is invisible until the entry is evicted
	store.Put(domain.Property{ListingID: "2", Slug: "attic", Title: "Renamed"})
	p, _ = q.GetBySlug(ctx, "attic")
	if p.Title != "Attic" {
		t.Fatalf("expected cached title, got %q", p.Title)
	}

	if _, err := q.GetBySlug(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryService_Cities(t *testing.T) {
	q, _, _ := seededQueries(t)
	got, err := q.Cities(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if want := []string{"Lisbon", "Porto", "Zermatt"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestQueryService_AmenityCuration(t *testing.T) {
	q, store, cache := seededQueries(t)
	ctx := context.Background()
	for id, name := range map[string]string{"wifi": "WiFi", "pool": "Pool", "sauna": "Sauna"} {
		_ = store.UpsertAmenity(ctx, id, name)
	}

	all, err := q.Amenities(ctx, true)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 active amenities, got %v err=%v", all, err)
	}

	if err := q.SetActiveAmenities(ctx, []string{" wifi ", "", "pool"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cache.Has("amenities:true") || cache.Has("amenities:false") {
		t.Fatalf("curation must evict amenity lists")
	}
	active, _ := q.Amenities(ctx, true)
	want := []domain.Amenity{{ID: "pool", Name: "Pool", IsActive: true}, {ID: "wifi", Name: "WiFi", IsActive: true}}
	if !reflect.DeepEqual(active, want) {
		t.Fatalf("got %+v want %+v", active, want)
	}

	st, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if st != (domain.Stats{Properties: 3, Amenities: 3, ActiveAmenities: 2}) {
		t.Fatalf("unexpected stats: %+v", st)
	}
}
