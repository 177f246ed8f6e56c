package app

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"hostaway_sync/internal/domain"
)

/********** alias registry (single source of truth, first match wins) **********/

var listingAliases = map[string][]string{
	"title":          {"name", "title"},
	"description":    {"description", "summary"},
	"city":           {"city"},
	"country":        {"country", "countryCode"},
	"address":        {"address", "street"},
	"latitude":       {"latitude", "lat"},
	"longitude":      {"longitude", "lng", "lon"},
	"bedrooms":       {"bedrooms", "bedroomCount"},
	"bathrooms":      {"bathrooms", "bathroomCount"},
	"guests":         {"accommodates", "maxGuests", "guests"},
	"base_price":     {"price", "basePrice", "nightlyPrice"},
	"property_type":  {"propertyType", "type"},
	"check_in_time":  {"checkInTime", "checkIn"},
	"check_out_time": {"checkOutTime", "checkOut"},
	"house_rules":    {"houseRules", "rules"},
	"images":         {"photos", "images"},
	"amenity_name":   {"name", "title", "amenityName"},
	"amenity_id":     {"id", "amenityId"},
}

const (
	untitledProperty    = "Untitled Property"
	defaultCheckInTime  = "15:00"
	defaultCheckOutTime = "11:00"
)

// Draft is one normalized listing before slug resolution and upsert.
type Draft struct {
	Property  domain.Property // Slug, CreatedAt and LastSynced are left zero
	Amenities []domain.AmenityRef
}

/********** tiny helpers **********/

// lookupAny: nested lookup with dot paths on maps. Present-but-null counts as absent.
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

// scalarString renders strings and JSON numbers; anything else yields "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		// 1e3 and 1000.0 both render as 1000
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d.String()
		}
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// firstString: first non-blank string for an alias set, else def.
func firstString(m map[string]any, key, def string) string {
	for _, p := range listingAliases[key] {
		if s, ok := lookupAny(m, p).(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return def
}

// asDecimal accepts JSON numbers (json.Number or float64) and numeric strings like "8,5".
func asDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Zero, false
}

// firstDecimal: first present value that parses as a number, else zero.
func firstDecimal(m map[string]any, key string) decimal.Decimal {
	for _, p := range listingAliases[key] {
		if d, ok := asDecimal(lookupAny(m, p)); ok {
			return d
		}
	}
	return decimal.Zero
}

// firstCount: first present value that parses as a number, truncated and clamped at zero.
func firstCount(m map[string]any, key string) int {
	d := firstDecimal(m, key)
	if d.IsNegative() {
		return 0
	}
	n := d.IntPart()
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	return int(n)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

/********** listing normalizer **********/

// NormalizeListing maps one raw upstream listing into a Draft. Only a missing or
// blank natural key (id) is an error; every other field falls back to a default.
func NormalizeListing(raw map[string]any) (Draft, error) {
	listingID := scalarString(lookupAny(raw, "id"))
	if listingID == "" {
		return Draft{}, fmt.Errorf("%w: listing %q has no id", domain.ErrRecordNormalization, firstString(raw, "title", untitledProperty))
	}

	amenityNames, refs := normalizeAmenities(raw)

	p := domain.Property{
		ListingID:    listingID,
		Title:        firstString(raw, "title", untitledProperty),
		Description:  firstString(raw, "description", ""),
		City:         firstString(raw, "city", ""),
		Country:      firstString(raw, "country", ""),
		Address:      firstString(raw, "address", ""),
		Latitude:     firstDecimal(raw, "latitude"),
		Longitude:    firstDecimal(raw, "longitude"),
		Bedrooms:     firstCount(raw, "bedrooms"),
		Bathrooms:    firstCount(raw, "bathrooms"),
		Guests:       firstCount(raw, "guests"),
		BasePrice:    nonNegative(firstDecimal(raw, "base_price")),
		Images:       normalizeImages(raw),
		Amenities:    amenityNames,
		PropertyType: firstString(raw, "property_type", ""),
		CheckInTime:  firstString(raw, "check_in_time", defaultCheckInTime),
		CheckOutTime: firstString(raw, "check_out_time", defaultCheckOutTime),
		HouseRules:   firstString(raw, "house_rules", ""),
	}
	return Draft{Property: p, Amenities: refs}, nil
}

// normalizeImages takes the first collection key holding an array (photos wins even when
// empty); elements are bare URLs or objects with a url field.
func normalizeImages(raw map[string]any) []string {
	out := []string{}
	for _, k := range listingAliases["images"] {
		items, ok := lookupAny(raw, k).([]any)
		if !ok {
			continue
		}
		for _, it := range items {
			switch t := it.(type) {
			case string:
				if u := strings.TrimSpace(t); u != "" {
					out = append(out, u)
				}
			case map[string]any:
				if u, ok := t["url"].(string); ok && strings.TrimSpace(u) != "" {
					out = append(out, strings.TrimSpace(u))
				}
			}
		}
		return out
	}
	return out
}

// normalizeAmenities returns display names for the property and (id, name) pairs for the
// run-wide catalog. Entries without a name are dropped from both.
func normalizeAmenities(raw map[string]any) ([]string, []domain.AmenityRef) {
	names := []string{}
	items, ok := lookupAny(raw, "amenities").([]any)
	if !ok {
		return names, nil
	}
	refs := make([]domain.AmenityRef, 0, len(items))
	for _, it := range items {
		var name, id string
		switch t := it.(type) {
		case string:
			name = strings.TrimSpace(t)
		case map[string]any:
			name = firstString(t, "amenity_name", "")
			for _, k := range listingAliases["amenity_id"] {
				if id = scalarString(t[k]); id != "" {
					break
				}
			}
		}
		if name == "" {
			continue
		}
		if id == "" {
			id = Slugify(name)
		}
		if id == "" {
			id = name
		}
		names = append(names, name)
		refs = append(refs, domain.AmenityRef{ID: id, Name: name})
	}
	return names, refs
}
