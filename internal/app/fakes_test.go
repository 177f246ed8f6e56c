package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"hostaway_sync/internal/domain"
)

var testCreds = domain.APICredentials{AccountID: "acct-1", Secret: "s3cret"}

// fakeAPI is an in-memory upstream. Zero value authenticates and returns no listings.
type fakeAPI struct {
	mu sync.Mutex

	authErr  error
	fetchErr error
	listings []map[string]any

	price    decimal.Decimal
	priceErr error

	bookID  string
	bookErr error

	// afterFetch runs once the listings are in hand, before FetchListings returns
	afterFetch func()

	// when set, FetchListings signals fetchStarted and blocks until release is closed
	fetchStarted chan struct{}
	release      chan struct{}

	authCalls   int
	fetchCalls  int
	lastBooking domain.BookingRequest
}

func (f *fakeAPI) Authenticate(_ context.Context, creds domain.APICredentials) (domain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	if f.authErr != nil {
		return domain.Credential{}, f.authErr
	}
	return domain.Credential{Kind: domain.CredentialBearer, Value: creds.Secret}, nil
}

func (f *fakeAPI) FetchListings(ctx context.Context, _ domain.Credential) ([]map[string]any, error) {
	f.mu.Lock()
	f.fetchCalls++
	started, release := f.fetchStarted, f.release
	f.mu.Unlock()
	if started != nil {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.afterFetch != nil {
		f.afterFetch()
	}
	return f.listings, nil
}

func (f *fakeAPI) PriceDetails(_ context.Context, _ domain.Credential, _, _, _ string) (decimal.Decimal, error) {
	if f.priceErr != nil {
		return decimal.Zero, f.priceErr
	}
	return f.price, nil
}

func (f *fakeAPI) CreateReservation(_ context.Context, _ domain.Credential, req domain.BookingRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastBooking = req
	if f.bookErr != nil {
		return "", f.bookErr
	}
	return f.bookID, nil
}

func (f *fakeAPI) setListings(ls []map[string]any) {
	f.mu.Lock()
	f.listings = ls
	f.mu.Unlock()
}

// listings decodes a JSON array the way the upstream client does (numbers stay json.Number).
func listings(t *testing.T, payload string) []map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var out []map[string]any
	if err := dec.Decode(&out); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return out
}

func listing(t *testing.T, payload string) map[string]any {
	t.Helper()
	return listings(t, "["+payload+"]")[0]
}
