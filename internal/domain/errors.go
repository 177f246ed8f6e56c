package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// fatal to a sync run
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrFetchFailed          = errors.New("fetch listings failed")

	// per record, accumulated in SyncSummary
	ErrRecordNormalization = errors.New("record normalization failed")
	ErrUpsert              = errors.New("upsert failed")
	ErrSlugConflict        = errors.New("slug unique constraint violated")

	ErrPriceUnavailable = errors.New("price unavailable")
	ErrBookingFailed    = errors.New("booking failed")
	ErrSyncInProgress   = errors.New("sync already in progress")
)
