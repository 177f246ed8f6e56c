package app

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hostaway_sync/internal/domain"
)

type BookingService struct {
	api   domain.ListingsAPI
	creds domain.APICredentials
}

func NewBookingService(api domain.ListingsAPI, creds domain.APICredentials) *BookingService {
	return &BookingService{api: api, creds: creds}
}

// Create forwards a reservation upstream. Delivery is at-least-once: callers that
// retry must resend the returned idempotency key.
func (s *BookingService) Create(ctx context.Context, req domain.BookingRequest) (domain.Reservation, error) {
	req.ListingID = strings.TrimSpace(req.ListingID)
	req.GuestName = strings.TrimSpace(req.GuestName)
	req.GuestEmail = strings.TrimSpace(req.GuestEmail)
	if req.ListingID == "" || req.CheckIn == "" || req.CheckOut == "" || req.GuestName == "" || req.GuestEmail == "" {
		return domain.Reservation{}, fmt.Errorf("%w: missing required fields", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(req.GuestEmail); err != nil {
		return domain.Reservation{}, fmt.Errorf("%w: guest email: %v", domain.ErrInvalidInput, err)
	}
	if req.Guests <= 0 {
		req.Guests = 1
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}

	cred, err := s.api.Authenticate(ctx, s.creds)
	if err != nil {
		return domain.Reservation{}, err
	}
	id, err := s.api.CreateReservation(ctx, cred, req)
	if err != nil {
		log.Warn().Err(err).Str("listing_id", req.ListingID).Str("idempotency_key", req.IdempotencyKey).Msg("booking failed")
		return domain.Reservation{}, err
	}
	log.Info().Str("listing_id", req.ListingID).Str("reservation_id", id).Msg("booking created")
	return domain.Reservation{ID: id, IdempotencyKey: req.IdempotencyKey}, nil
}
