package hostaway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"hostaway_sync/internal/domain"
)

const (
	directChannelID  = 2000
	bookingSource    = "website"
	newBookingStatus = "new"
)

type reservationPayload struct {
	ListingMapID   int64  `json:"listingMapId"`
	ChannelID      int    `json:"channelId"`
	Source         string `json:"source"`
	ArrivalDate    string `json:"arrivalDate"`
	DepartureDate  string `json:"departureDate"`
	GuestName      string `json:"guestName"`
	GuestEmail     string `json:"guestEmail"`
	Phone          string `json:"phone"`
	NumberOfGuests int    `json:"numberOfGuests"`
	Status         string `json:"status"`
}

// CreateReservation posts a new reservation and returns the upstream reservation id.
// req.IdempotencyKey is forwarded so a re-sent request is not booked twice.
func (c *Client) CreateReservation(ctx context.Context, cred domain.Credential, req domain.BookingRequest) (string, error) {
	listingMapID, err := strconv.ParseInt(strings.TrimSpace(req.ListingID), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: listing id %q is not numeric", domain.ErrInvalidInput, req.ListingID)
	}
	payload, err := json.Marshal(reservationPayload{
		ListingMapID:   listingMapID,
		ChannelID:      directChannelID,
		Source:         bookingSource,
		ArrivalDate:    req.CheckIn,
		DepartureDate:  req.CheckOut,
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		Phone:          req.GuestPhone,
		NumberOfGuests: req.Guests,
		Status:         newBookingStatus,
	})
	if err != nil {
		return "", err
	}

	hr, err := c.newRequest(http.MethodPost, "/reservations", nil, payload)
	if err != nil {
		return "", err
	}
	hr.Header.Set("Authorization", cred.Authorization())
	hr.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		hr.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := c.send(ctx, "reservations", c.authTimeout, hr)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrBookingFailed, err)
	}
	body, _ := decode(resp.body)

	if resp.status != http.StatusOK && resp.status != http.StatusCreated {
		logUpstream("reservations", resp.status, resp.body, nil)
		msg := "upstream rejected reservation"
		if m, ok := lookup(body, "message"); ok {
			if s, ok := m.(string); ok && s != "" {
				msg = s
			}
		}
		return "", fmt.Errorf("%w: %s", domain.ErrBookingFailed, msg)
	}

	id, ok := reservationIDFrom(body)
	if !ok {
		// accepted upstream but no id to hand back
		log.Warn().Str("listing_id", req.ListingID).Int("status", resp.status).Msg("reservation created without id")
	}
	return id, nil
}
