package app

import (
	"context"
	"fmt"
	"strings"

	"hostaway_sync/internal/domain"
)

type PriceService struct {
	api   domain.ListingsAPI
	creds domain.APICredentials
}

func NewPriceService(api domain.ListingsAPI, creds domain.APICredentials) *PriceService {
	return &PriceService{api: api, creds: creds}
}

// LookupPrice asks upstream for the total of a stay. Nothing is retried or cached.
func (s *PriceService) LookupPrice(ctx context.Context, listingID, checkIn, checkOut string) (domain.PriceQuote, error) {
	listingID, checkIn, checkOut = strings.TrimSpace(listingID), strings.TrimSpace(checkIn), strings.TrimSpace(checkOut)
	if listingID == "" || checkIn == "" || checkOut == "" {
		return domain.PriceQuote{}, fmt.Errorf("%w: listing id, check-in and check-out are required", domain.ErrInvalidInput)
	}
	cred, err := s.api.Authenticate(ctx, s.creds)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	total, err := s.api.PriceDetails(ctx, cred, listingID, checkIn, checkOut)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	return domain.PriceQuote{ListingID: listingID, CheckIn: checkIn, CheckOut: checkOut, TotalPrice: total}, nil
}
