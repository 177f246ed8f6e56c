package domain

import (
	"github.com/shopspring/decimal"
)

// APICredentials are the account settings handed to the auth resolver per call.
type APICredentials struct {
	AccountID string
	Secret    string
}

func (c APICredentials) Complete() bool { return c.AccountID != "" && c.Secret != "" }

type CredentialKind string

const (
	CredentialBearer CredentialKind = "bearer"
	CredentialBasic  CredentialKind = "basic"
)

// Credential is an opaque resolved access value. Only Kind is meaningful to callers.
type Credential struct {
	Kind  CredentialKind
	Value string
}

// Authorization returns the Authorization header value for this credential.
func (c Credential) Authorization() string {
	if c.Kind == CredentialBasic {
		return "Basic " + c.Value
	}
	return "Bearer " + c.Value
}

func (c Credential) IsZero() bool { return c.Value == "" }

type PriceQuote struct {
	ListingID  string          `json:"listing_id"`
	CheckIn    string          `json:"check_in"`
	CheckOut   string          `json:"check_out"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// BookingRequest is a guest reservation request forwarded upstream.
type BookingRequest struct {
	ListingID      string `json:"listing_id"`
	CheckIn        string `json:"check_in"`
	CheckOut       string `json:"check_out"`
	Guests         int    `json:"guests"`
	GuestName      string `json:"guest_name"`
	GuestEmail     string `json:"guest_email"`
	GuestPhone     string `json:"guest_phone"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type Reservation struct {
	ID             string `json:"reservation_id"`
	IdempotencyKey string `json:"idempotency_key"`
}
