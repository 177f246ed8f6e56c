package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hostaway_sync/internal/adapters/observability"
	"hostaway_sync/internal/domain"
)

// SyncService runs fetch -> normalize -> resolve slug -> upsert against the store.
// RunSync itself does not coordinate concurrent runs; TryRunSync does, for one process.
type SyncService struct {
	api     domain.ListingsAPI
	store   domain.Store
	cache   domain.Cache
	creds   domain.APICredentials
	workers int64
	now     domain.Clock

	running sync.Mutex
}

func NewSyncService(api domain.ListingsAPI, store domain.Store, cache domain.Cache, creds domain.APICredentials, workers int) *SyncService {
	if workers <= 0 {
		workers = 1
	}
	return &SyncService{api: api, store: store, cache: cache, creds: creds, workers: int64(workers), now: time.Now}
}

// WithClock swaps the time source used for created_at/last_synced.
func (s *SyncService) WithClock(c domain.Clock) *SyncService {
	s.now = c
	return s
}

// TryRunSync runs a sync unless another one started through this service is in flight.
func (s *SyncService) TryRunSync(ctx context.Context) (domain.SyncSummary, error) {
	if !s.running.TryLock() {
		return domain.SyncSummary{}, domain.ErrSyncInProgress
	}
	defer s.running.Unlock()
	return s.RunSync(ctx)
}

// RunSync resolves a credential and runs a full sync. Authentication and fetch failures
// are fatal and returned as errors; per-record failures land in the summary.
func (s *SyncService) RunSync(ctx context.Context) (domain.SyncSummary, error) {
	start := time.Now()
	if !s.creds.Complete() {
		observability.ObserveSyncRun(domain.SyncStatusFailed, time.Since(start))
		return domain.SyncSummary{}, fmt.Errorf("%w: account id and api secret must be configured", domain.ErrAuthenticationFailed)
	}
	cred, err := s.api.Authenticate(ctx, s.creds)
	if err != nil {
		log.Error().Err(err).Str("account", truncate(s.creds.AccountID, 10)).Msg("sync: authentication failed")
		observability.ObserveSyncRun(domain.SyncStatusFailed, time.Since(start))
		return domain.SyncSummary{}, err
	}
	return s.RunSyncWith(ctx, cred)
}

// RunSyncWith runs a sync with an already resolved credential.
func (s *SyncService) RunSyncWith(ctx context.Context, cred domain.Credential) (domain.SyncSummary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	logger.Info().Str("credential", string(cred.Kind)).Msg("sync started")

	raws, err := s.api.FetchListings(ctx, cred)
	if err != nil {
		logger.Error().Err(err).Msg("sync: fetch listings failed")
		observability.ObserveSyncRun(domain.SyncStatusFailed, time.Since(start))
		return domain.SyncSummary{}, err
	}
	if len(raws) == 0 {
		logger.Warn().Msg("sync: upstream returned no listings")
	}
	logger.Info().Int("listings", len(raws)).Msg("listings fetched")

	// Once listings are in hand the run is not cancellable: it completes or the process exits.
	ctx = context.WithoutCancel(ctx)

	sum := domain.SyncSummary{RunID: runID, Errors: []string{}}
	drafts, errs := s.normalizeAll(ctx, raws)

	// Aggregation and upserts follow input order so slug tie-breaks stay deterministic.
	agg := NewAmenityAggregator()
	for i := range raws {
		if errs[i] != nil {
			logger.Warn().Int("index", i).Err(errs[i]).Msg("listing skipped")
			observability.ObserveSyncRecord("skipped")
			sum.Errors = append(sum.Errors, fmt.Sprintf("record %d: %v", i+1, errs[i]))
			continue
		}
		agg.Add(drafts[i].Amenities...)
	}

	for i := range raws {
		if errs[i] != nil {
			continue
		}
		d := drafts[i]
		created, err := s.upsert(ctx, d.Property)
		switch {
		case err == nil:
			sum.Synced++
			if created {
				sum.Created++
				observability.ObserveSyncRecord("created")
			} else {
				sum.Updated++
				observability.ObserveSyncRecord("updated")
			}
		case errors.Is(err, domain.ErrSlugConflict):
			logger.Error().Err(err).Str("listing_id", d.Property.ListingID).Str("title", d.Property.Title).
				Msg("slug constraint fired after resolution")
			observability.ObserveSyncRecord("conflict")
			sum.Conflicts = append(sum.Conflicts, fmt.Sprintf("%s (listing %s): %v", d.Property.Title, d.Property.ListingID, err))
		default:
			logger.Warn().Err(err).Str("listing_id", d.Property.ListingID).Str("title", d.Property.Title).Msg("listing upsert failed")
			observability.ObserveSyncRecord("error")
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s (listing %s): %v", d.Property.Title, d.Property.ListingID, err))
		}
	}

	sum.Amenities = agg.Len()
	for _, msg := range agg.Flush(ctx, s.store) {
		logger.Warn().Str("error", msg).Msg("amenity upsert failed")
		sum.Errors = append(sum.Errors, msg)
	}
	s.invalidateCatalog(ctx)

	observability.ObserveSyncRun(sum.Status(), time.Since(start))
	logger.Info().
		Int("synced", sum.Synced).
		Int("created", sum.Created).
		Int("updated", sum.Updated).
		Int("amenities", sum.Amenities).
		Int("errors", len(sum.Errors)).
		Int("conflicts", len(sum.Conflicts)).
		Dur("took", time.Since(start)).
		Msg("sync completed")
	return sum, nil
}

// normalizeAll normalizes records in parallel; results keep input positions.
func (s *SyncService) normalizeAll(ctx context.Context, raws []map[string]any) ([]Draft, []error) {
	drafts := make([]Draft, len(raws))
	errs := make([]error, len(raws))
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup

	for i := range raws {
		// ctx is detached from cancellation, so Acquire only returns once a slot is free
		_ = sem.Acquire(ctx, 1)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			drafts[i], errs[i] = NormalizeListing(raws[i])
		}(i)
	}
	wg.Wait()
	return drafts, errs
}

// upsert inserts or updates one property. created_at is only ever written on insert.
func (s *SyncService) upsert(ctx context.Context, p domain.Property) (created bool, err error) {
	existing, err := s.store.FindByListingID(ctx, p.ListingID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		created = true
	case err != nil:
		return false, fmt.Errorf("%w: lookup: %w", domain.ErrUpsert, err)
	}

	slug, err := ResolveSlug(ctx, s.store.SlugExists, p.Title, p.ListingID, existing.Slug)
	if err != nil {
		return false, fmt.Errorf("%w: resolve slug: %w", domain.ErrUpsert, err)
	}
	p.Slug = slug
	now := s.now().UTC().Truncate(time.Second)
	p.LastSynced = now

	if created {
		p.CreatedAt = now
		err = s.store.InsertProperty(ctx, p)
	} else {
		p.CreatedAt = existing.CreatedAt
		err = s.store.UpdateProperty(ctx, p)
	}
	if err != nil {
		if errors.Is(err, domain.ErrSlugConflict) {
			return false, err
		}
		return false, fmt.Errorf("%w: %w", domain.ErrUpsert, err)
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, propertyKey(p.Slug))
		if existing.Slug != "" && existing.Slug != p.Slug {
			_ = s.cache.Del(ctx, propertyKey(existing.Slug))
		}
	}
	return created, nil
}

// ResolveSlug exposes slug resolution against the current store state.
func (s *SyncService) ResolveSlug(ctx context.Context, title, listingID string) (string, error) {
	if title == "" {
		title = untitledProperty
	}
	return ResolveSlug(ctx, s.store.SlugExists, title, listingID, "")
}

func (s *SyncService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, amenitiesKey(true))
	_ = s.cache.Del(ctx, amenitiesKey(false))
	_ = s.cache.Del(ctx, citiesKey)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
