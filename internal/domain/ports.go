package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PropertyRepository interface {
	// Write paths
	InsertProperty(ctx context.Context, p Property) error
	UpdateProperty(ctx context.Context, p Property) error

	// Read paths
	FindByListingID(ctx context.Context, listingID string) (Property, error)
	GetBySlug(ctx context.Context, slug string) (Property, error)
	// SlugExists reports whether any listing other than excludingListingID holds slug.
	SlugExists(ctx context.Context, slug, excludingListingID string) (bool, error)
	Search(ctx context.Context, q SearchQuery) ([]Property, error)
	CountProperties(ctx context.Context) (int, error)
	ListCities(ctx context.Context) ([]string, error)
}

type AmenityRepository interface {
	// UpsertAmenity inserts an active amenity or renames an existing one, leaving is_active untouched.
	UpsertAmenity(ctx context.Context, id, name string) error
	ListAmenities(ctx context.Context, activeOnly bool) ([]Amenity, error)
	SetActiveAmenities(ctx context.Context, ids []string) error
}

// Store is the durable store the sync engine and read paths run against.
type Store interface {
	PropertyRepository
	AmenityRepository
}

// ListingsAPI is the upstream vacation-rental API.
type ListingsAPI interface {
	Authenticate(ctx context.Context, creds APICredentials) (Credential, error)
	FetchListings(ctx context.Context, cred Credential) ([]map[string]any, error)
	PriceDetails(ctx context.Context, cred Credential, listingID, checkIn, checkOut string) (decimal.Decimal, error)
	CreateReservation(ctx context.Context, cred Credential, req BookingRequest) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type Clock func() time.Time

// Read models & queries
type SearchQuery struct {
	Location  string
	Adults    int
	Children  int
	Infants   int
	Amenities []string
}

// TotalGuests counts adults and children; infants do not occupy a guest slot.
func (q SearchQuery) TotalGuests() int {
	n := q.Adults + q.Children
	if n < 0 {
		return 0
	}
	return n
}

type SearchResult struct {
	Items []Property `json:"properties"`
	Count int        `json:"count"`
	// TotalInStore lets callers tell "no match" apart from "nothing synced yet".
	TotalInStore int `json:"total_in_store"`
}

type Stats struct {
	Properties      int `json:"properties"`
	Amenities       int `json:"amenities"`
	ActiveAmenities int `json:"active_amenities"`
}
