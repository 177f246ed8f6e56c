package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property is the canonical local row for one upstream listing.
type Property struct {
	ListingID    string          `json:"listing_id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	City         string          `json:"city"`
	Country      string          `json:"country"`
	Address      string          `json:"address"`
	Latitude     decimal.Decimal `json:"latitude"`
	Longitude    decimal.Decimal `json:"longitude"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	Guests       int             `json:"guests"`
	BasePrice    decimal.Decimal `json:"base_price"`
	Images       []string        `json:"images"`
	Amenities    []string        `json:"amenities"` // display names, upstream order
	PropertyType string          `json:"property_type"`
	CheckInTime  string          `json:"check_in_time"`
	CheckOutTime string          `json:"check_out_time"`
	HouseRules   string          `json:"house_rules"`
	CreatedAt    time.Time       `json:"created_at"`
	LastSynced   time.Time       `json:"last_synced"`
}

// SameContent reports whether every synced field except the timestamps matches.
func (p Property) SameContent(o Property) bool {
	if p.ListingID != o.ListingID || p.Slug != o.Slug || p.Title != o.Title ||
		p.Description != o.Description || p.City != o.City || p.Country != o.Country ||
		p.Address != o.Address || p.PropertyType != o.PropertyType ||
		p.CheckInTime != o.CheckInTime || p.CheckOutTime != o.CheckOutTime || p.HouseRules != o.HouseRules {
		return false
	}
	if !p.Latitude.Equal(o.Latitude) || !p.Longitude.Equal(o.Longitude) || !p.BasePrice.Equal(o.BasePrice) {
		return false
	}
	if p.Bedrooms != o.Bedrooms || p.Bathrooms != o.Bathrooms || p.Guests != o.Guests {
		return false
	}
	return equalStrings(p.Images, o.Images) && equalStrings(p.Amenities, o.Amenities)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Amenity is one entry of the curated amenity catalog.
type Amenity struct {
	ID       string `json:"amenity_id"`
	Name     string `json:"amenity_name"`
	IsActive bool   `json:"is_active"`
}

// AmenityRef is an (id, name) pair contributed by a single listing during a sync run.
type AmenityRef struct {
	ID   string
	Name string
}
