package app

import (
	"context"
	"fmt"

	"hostaway_sync/internal/domain"
)

// AmenityAggregator accumulates the amenity catalog seen during one sync run.
// Later names for the same id overwrite earlier ones; first-seen order is kept for flushing.
type AmenityAggregator struct {
	names map[string]string
	order []string
}

func NewAmenityAggregator() *AmenityAggregator {
	return &AmenityAggregator{names: make(map[string]string)}
}

func (a *AmenityAggregator) Add(refs ...domain.AmenityRef) {
	for _, r := range refs {
		if r.ID == "" || r.Name == "" {
			continue
		}
		if _, seen := a.names[r.ID]; !seen {
			a.order = append(a.order, r.ID)
		}
		a.names[r.ID] = r.Name
	}
}

func (a *AmenityAggregator) Len() int { return len(a.order) }

// Entries returns the aggregated catalog in first-seen order.
func (a *AmenityAggregator) Entries() []domain.AmenityRef {
	out := make([]domain.AmenityRef, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, domain.AmenityRef{ID: id, Name: a.names[id]})
	}
	return out
}

// Flush upserts every entry. New ids are inserted active; known ids only get renamed.
// A failed entry does not stop the others; the failures are returned as messages.
func (a *AmenityAggregator) Flush(ctx context.Context, repo domain.AmenityRepository) []string {
	var errs []string
	for _, e := range a.Entries() {
		if err := repo.UpsertAmenity(ctx, e.ID, e.Name); err != nil {
			errs = append(errs, fmt.Sprintf("amenity %q: %v", e.Name, err))
		}
	}
	return errs
}
