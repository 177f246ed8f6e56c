package hostaway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"hostaway_sync/internal/domain"
)

// FetchListings retrieves the whole listing collection in one call.
func (c *Client) FetchListings(ctx context.Context, cred domain.Credential) ([]map[string]any, error) {
	req, err := c.newRequest(http.MethodGet, "/listings", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	req.Header.Set("Authorization", cred.Authorization())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.send(ctx, "listings", c.fetchTimeout, req)
	if err != nil {
		logUpstream("listings", resp.status, nil, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	if resp.status != http.StatusOK {
		logUpstream("listings", resp.status, resp.body, nil)
		return nil, fmt.Errorf("%w: status %d", domain.ErrFetchFailed, resp.status)
	}
	body, err := decode(resp.body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", domain.ErrFetchFailed, err)
	}
	out, ok := listingsFrom(body)
	if !ok {
		logUpstream("listings", resp.status, resp.body, nil)
		return nil, fmt.Errorf("%w: unexpected response shape", domain.ErrFetchFailed)
	}
	return out, nil
}

// PriceDetails asks the upstream calendar for the total price of a stay.
func (c *Client) PriceDetails(ctx context.Context, cred domain.Credential, listingID, checkIn, checkOut string) (decimal.Decimal, error) {
	path := "/listings/" + url.PathEscape(listingID) + "/calendar/priceDetails"
	req, err := c.newRequest(http.MethodGet, path, url.Values{"checkIn": {checkIn}, "checkOut": {checkOut}}, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", domain.ErrPriceUnavailable, err)
	}
	req.Header.Set("Authorization", cred.Authorization())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.send(ctx, "price_details", c.priceTimeout, req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", domain.ErrPriceUnavailable, err)
	}
	if resp.status != http.StatusOK {
		logUpstream("price_details", resp.status, resp.body, nil)
		return decimal.Zero, fmt.Errorf("%w: status %d", domain.ErrPriceUnavailable, resp.status)
	}
	body, err := decode(resp.body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode: %w", domain.ErrPriceUnavailable, err)
	}
	total, ok := totalPriceFrom(body)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no totalPrice in response", domain.ErrPriceUnavailable)
	}
	return total, nil
}
