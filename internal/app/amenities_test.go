package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"hostaway_sync/internal/app"
	"hostaway_sync/internal/domain"
	"hostaway_sync/internal/storage/memory"
)

func TestAmenityAggregator_LastNameWinsFirstOrderKept(t *testing.T) {
	agg := app.NewAmenityAggregator()
	agg.Add(domain.AmenityRef{ID: "wifi", Name: "WiFi"}, domain.AmenityRef{ID: "pool", Name: "Pool"})
	agg.Add(domain.AmenityRef{ID: "wifi", Name: "Wi-Fi 6"}, domain.AmenityRef{ID: "", Name: "ignored"})

	want := []domain.AmenityRef{{ID: "wifi", Name: "Wi-Fi 6"}, {ID: "pool", Name: "Pool"}}
	if got := agg.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if agg.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", agg.Len())
	}
}

type failingAmenityRepo struct {
	*memory.Store
	failID string
}

func (f failingAmenityRepo) UpsertAmenity(ctx context.Context, id, name string) error {
	if id == f.failID {
		return errors.New("lock wait timeout")
	}
	return f.Store.UpsertAmenity(ctx, id, name)
}

func TestAmenityAggregator_FlushContinuesPastFailures(t *testing.T) {
	store := memory.NewStore()
	agg := app.NewAmenityAggregator()
	agg.Add(domain.AmenityRef{ID: "wifi", Name: "WiFi"}, domain.AmenityRef{ID: "pool", Name: "Pool"}, domain.AmenityRef{ID: "sauna", Name: "Sauna"})

	errs := agg.Flush(context.Background(), failingAmenityRepo{Store: store, failID: "pool"})

	if len(errs) != 1 {
		t.Fatalf("expected one failure, got %v", errs)
	}
	for _, id := range []string{"wifi", "sauna"} {
		a, ok := store.Amenity(id)
		if !ok || !a.IsActive {
			t.Fatalf("expected %s inserted active, got %+v ok=%v", id, a, ok)
		}
	}
}
