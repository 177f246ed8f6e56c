package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hostaway_sync/internal/domain"
)

type QueryService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(s domain.Store, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetBySlug(ctx context.Context, slug string) (domain.Property, error) {
	key := propertyKey(slug)
	var p domain.Property
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Property{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

// Search runs against the local store only; results are not cached because the filter space is open.
func (s *QueryService) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error) {
	q.Location = strings.TrimSpace(q.Location)
	names := make([]string, 0, len(q.Amenities))
	for _, a := range q.Amenities {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	q.Amenities = names

	items, err := s.store.Search(ctx, q)
	if err != nil {
		return domain.SearchResult{}, err
	}
	total, err := s.store.CountProperties(ctx)
	if err != nil {
		return domain.SearchResult{}, err
	}
	if items == nil {
		items = []domain.Property{}
	}
	return domain.SearchResult{Items: items, Count: len(items), TotalInStore: total}, nil
}

func (s *QueryService) Cities(ctx context.Context) ([]string, error) {
	var out []string
	if ok, _ := s.cache.Get(ctx, citiesKey, &out); ok {
		return out, nil
	}
	out, err := s.store.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, citiesKey, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) Amenities(ctx context.Context, activeOnly bool) ([]domain.Amenity, error) {
	key := amenitiesKey(activeOnly)
	var out []domain.Amenity
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.store.ListAmenities(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// SetActiveAmenities is the curation step: exactly the given ids end up active.
func (s *QueryService) SetActiveAmenities(ctx context.Context, ids []string) error {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	if err := s.store.SetActiveAmenities(ctx, clean); err != nil {
		return fmt.Errorf("set active amenities: %w", err)
	}
	_ = s.cache.Del(ctx, amenitiesKey(true))
	_ = s.cache.Del(ctx, amenitiesKey(false))
	return nil
}

func (s *QueryService) Stats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	n, err := s.store.CountProperties(ctx)
	if err != nil {
		return st, err
	}
	st.Properties = n
	all, err := s.store.ListAmenities(ctx, false)
	if err != nil {
		return st, err
	}
	st.Amenities = len(all)
	for _, a := range all {
		if a.IsActive {
			st.ActiveAmenities++
		}
	}
	return st, nil
}
