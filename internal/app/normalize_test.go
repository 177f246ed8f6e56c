package app_test

import (
	"errors"
	"reflect"
	"testing"

	"hostaway_sync/internal/app"
	"hostaway_sync/internal/domain"
)

func TestNormalizeListing_FullRecord(t *testing.T) {
	raw := listing(t, `{
		"id": 101,
		"name": "  Beach House ",
		"description": "Sea view",
		"city": "Lisbon",
		"countryCode": "PT",
		"street": "Rua 1",
		"lat": 38.7223,
		"lng": "-9,1393",
		"bedroomCount": 3,
		"bathrooms": "2",
		"maxGuests": 6,
		"basePrice": 180.50,
		"type": "Apartment",
		"checkInTime": "16:00",
		"houseRules": "No parties",
		"photos": [{"url": "https://img/1.jpg"}, "https://img/2.jpg", {"caption": "no url"}],
		"amenities": [{"id": 7, "name": "WiFi"}, "Pool", {"title": "Hot Tub"}]
	}`)

	d, err := app.NormalizeListing(raw)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	p := d.Property
	if p.ListingID != "101" || p.Title != "Beach House" || p.Country != "PT" || p.Address != "Rua 1" {
		t.Fatalf("unexpected identity fields: %+v", p)
	}
	if p.Latitude.String() != "38.7223" || p.Longitude.String() != "-9.1393" {
		t.Fatalf("unexpected coords: %s,%s", p.Latitude, p.Longitude)
	}
	if p.Bedrooms != 3 || p.Bathrooms != 2 || p.Guests != 6 {
		t.Fatalf("unexpected counts: %d/%d/%d", p.Bedrooms, p.Bathrooms, p.Guests)
	}
	if p.BasePrice.String() != "180.5" {
		t.Fatalf("unexpected price: %s", p.BasePrice)
	}
	if p.CheckInTime != "16:00" || p.CheckOutTime != "11:00" {
		t.Fatalf("unexpected times: %s/%s", p.CheckInTime, p.CheckOutTime)
	}
	if want := []string{"https://img/1.jpg", "https://img/2.jpg"}; !reflect.DeepEqual(p.Images, want) {
		t.Fatalf("images: got %v want %v", p.Images, want)
	}
	if want := []string{"WiFi", "Pool", "Hot Tub"}; !reflect.DeepEqual(p.Amenities, want) {
		t.Fatalf("amenities: got %v want %v", p.Amenities, want)
	}
	wantRefs := []domain.AmenityRef{{ID: "7", Name: "WiFi"}, {ID: "pool", Name: "Pool"}, {ID: "hot-tub", Name: "Hot Tub"}}
	if !reflect.DeepEqual(d.Amenities, wantRefs) {
		t.Fatalf("refs: got %+v want %+v", d.Amenities, wantRefs)
	}
	if p.Slug != "" || !p.CreatedAt.IsZero() || !p.LastSynced.IsZero() {
		t.Fatalf("normalizer must not set slug or timestamps: %+v", p)
	}
}

func TestNormalizeListing_Defaults(t *testing.T) {
	d, err := app.NormalizeListing(listing(t, `{"id": "abc", "name": "   "}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	p := d.Property
	if p.Title != "Untitled Property" {
		t.Fatalf("expected default title, got %q", p.Title)
	}
	if p.CheckInTime != "15:00" || p.CheckOutTime != "11:00" {
		t.Fatalf("expected default times, got %s/%s", p.CheckInTime, p.CheckOutTime)
	}
	if !p.Latitude.IsZero() || !p.BasePrice.IsZero() || p.Bedrooms != 0 {
		t.Fatalf("expected zero numerics: %+v", p)
	}
	if p.Images == nil || len(p.Images) != 0 || p.Amenities == nil || len(p.Amenities) != 0 {
		t.Fatalf("expected empty, non-nil lists: %#v %#v", p.Images, p.Amenities)
	}
}

func TestNormalizeListing_FallbackPriority(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		check func(domain.Property) bool
	}{
		{"bedrooms beats bedroomCount", `{"id":1,"bedrooms":2,"bedroomCount":5}`, func(p domain.Property) bool { return p.Bedrooms == 2 }},
		{"bedroomCount used alone", `{"id":1,"bedroomCount":3}`, func(p domain.Property) bool { return p.Bedrooms == 3 }},
		{"unparseable skipped", `{"id":1,"bedrooms":"many","bedroomCount":4}`, func(p domain.Property) bool { return p.Bedrooms == 4 }},
		{"null counts as absent", `{"id":1,"name":null,"title":"Loft"}`, func(p domain.Property) bool { return p.Title == "Loft" }},
		{"negative count clamps", `{"id":1,"accommodates":-2}`, func(p domain.Property) bool { return p.Guests == 0 }},
		{"fraction truncates", `{"id":1,"bathrooms":1.5}`, func(p domain.Property) bool { return p.Bathrooms == 1 }},
		{"negative price clamps", `{"id":1,"price":-10}`, func(p domain.Property) bool { return p.BasePrice.IsZero() }},
		{"photos wins even when empty", `{"id":1,"photos":[],"images":["https://img/x.jpg"]}`, func(p domain.Property) bool { return len(p.Images) == 0 }},
		{"images when photos missing", `{"id":1,"photos":"nope","images":["https://img/x.jpg"]}`, func(p domain.Property) bool { return len(p.Images) == 1 }},
		{"exponent id", `{"id":1e3}`, func(p domain.Property) bool { return p.ListingID == "1000" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := app.NormalizeListing(listing(t, tc.raw))
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if !tc.check(d.Property) {
				t.Fatalf("check failed for %s: %+v", tc.raw, d.Property)
			}
		})
	}
}

func TestNormalizeListing_AmenitiesWithoutNameAreDropped(t *testing.T) {
	d, err := app.NormalizeListing(listing(t, `{"id":1,"amenities":[{"id":9}, "", 42, {"amenityName":"Sauna","amenityId":"s-1"}]}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(d.Property.Amenities, []string{"Sauna"}) {
		t.Fatalf("unexpected amenities: %v", d.Property.Amenities)
	}
	if !reflect.DeepEqual(d.Amenities, []domain.AmenityRef{{ID: "s-1", Name: "Sauna"}}) {
		t.Fatalf("unexpected refs: %+v", d.Amenities)
	}
}

func TestNormalizeListing_MissingID(t *testing.T) {
	for _, raw := range []string{`{"name":"No Id"}`, `{"id":"  "}`, `{"id":null}`, `{"id":{"x":1}}`} {
		if _, err := app.NormalizeListing(listing(t, raw)); !errors.Is(err, domain.ErrRecordNormalization) {
			t.Fatalf("%s: expected ErrRecordNormalization, got %v", raw, err)
		}
	}
	if _, err := app.NormalizeListing(nil); !errors.Is(err, domain.ErrRecordNormalization) {
		t.Fatalf("nil record: expected ErrRecordNormalization, got %v", err)
	}
}
