// Package memory is test support: in-process implementations of the store and cache
// ports shared by the service and handler tests. Nothing under cmd/ imports it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"hostaway_sync/internal/domain"
)

type Store struct {
	mu         sync.RWMutex
	properties map[string]domain.Property // by listing id
	amenities  map[string]domain.Amenity  // by amenity id
	failWrites map[string]error           // by listing id
}

type Option func(*Store)

// WithWriteFailure makes every insert or update of listingID return err.
func WithWriteFailure(listingID string, err error) Option {
	return func(s *Store) { s.failWrites[listingID] = err }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		properties: map[string]domain.Property{},
		amenities:  map[string]domain.Amenity{},
		failWrites: map[string]error{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) slugHolder(slug string) (string, bool) {
	for id, p := range s.properties {
		if p.Slug == slug {
			return id, true
		}
	}
	return "", false
}

func (s *Store) InsertProperty(_ context.Context, p domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failWrites[p.ListingID]; err != nil {
		return err
	}
	if _, ok := s.properties[p.ListingID]; ok {
		return fmt.Errorf("duplicate listing id %s", p.ListingID)
	}
	if _, ok := s.slugHolder(p.Slug); ok {
		return fmt.Errorf("%w: %s", domain.ErrSlugConflict, p.Slug)
	}
	s.properties[p.ListingID] = clone(p)
	return nil
}

func (s *Store) UpdateProperty(_ context.Context, p domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failWrites[p.ListingID]; err != nil {
		return err
	}
	cur, ok := s.properties[p.ListingID]
	if !ok {
		return domain.ErrNotFound
	}
	if holder, ok := s.slugHolder(p.Slug); ok && holder != p.ListingID {
		return fmt.Errorf("%w: %s", domain.ErrSlugConflict, p.Slug)
	}
	p.CreatedAt = cur.CreatedAt
	s.properties[p.ListingID] = clone(p)
	return nil
}

func (s *Store) FindByListingID(_ context.Context, listingID string) (domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[listingID]
	if !ok {
		return domain.Property{}, domain.ErrNotFound
	}
	return clone(p), nil
}

func (s *Store) GetBySlug(_ context.Context, slug string) (domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.slugHolder(slug); ok {
		return clone(s.properties[id]), nil
	}
	return domain.Property{}, domain.ErrNotFound
}

func (s *Store) SlugExists(_ context.Context, slug, excludingListingID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.slugHolder(slug)
	return ok && id != excludingListingID, nil
}

func (s *Store) Search(_ context.Context, q domain.SearchQuery) ([]domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc := strings.ToLower(q.Location)
	guests := q.TotalGuests()
	var out []domain.Property
	for _, p := range s.properties {
		if loc != "" && !strings.Contains(strings.ToLower(p.City), loc) && !strings.Contains(strings.ToLower(p.Country), loc) {
			continue
		}
		if guests > 0 && p.Guests < guests {
			continue
		}
		if !hasAll(p.Amenities, q.Amenities) {
			continue
		}
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ListingID < out[j].ListingID
	})
	return out, nil
}

func (s *Store) CountProperties(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.properties), nil
}

func (s *Store) ListCities(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range s.properties {
		if p.City != "" && !seen[p.City] {
			seen[p.City] = true
			out = append(out, p.City)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) UpsertAmenity(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.amenities[id]
	if !ok {
		a = domain.Amenity{ID: id, IsActive: true}
	}
	a.Name = name
	s.amenities[id] = a
	return nil
}

func (s *Store) ListAmenities(_ context.Context, activeOnly bool) ([]domain.Amenity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Amenity{}
	for _, a := range s.amenities {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) SetActiveAmenities(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	keep := map[string]bool{}
	for _, id := range ids {
		keep[id] = true
	}
	for id, a := range s.amenities {
		a.IsActive = keep[id]
		s.amenities[id] = a
	}
	return nil
}

// Amenity returns a stored amenity directly, for assertions.
func (s *Store) Amenity(id string) (domain.Amenity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.amenities[id]
	return a, ok
}

// Put seeds a property without going through slug resolution.
func (s *Store) Put(p domain.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[p.ListingID] = clone(p)
}

func hasAll(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func clone(p domain.Property) domain.Property {
	p.Images = append([]string(nil), p.Images...)
	p.Amenities = append([]string(nil), p.Amenities...)
	return p
}
