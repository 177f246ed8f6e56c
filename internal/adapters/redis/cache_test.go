package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	redisad "hostaway_sync/internal/adapters/redis"
	"hostaway_sync/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestCache_RoundTripAndExpiry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	in := domain.Property{ListingID: "101", Slug: "beach-house", BasePrice: decimal.RequireFromString("180.50"), Amenities: []string{"WiFi"}}
	if err := c.Set(ctx, "property:beach-house", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("rentals:property:beach-house") {
		t.Fatalf("expected namespaced key in redis, keys=%v", mr.Keys())
	}

	var out domain.Property
	ok, err := c.Get(ctx, "property:beach-house", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if out.Slug != "beach-house" || !out.BasePrice.Equal(in.BasePrice) || len(out.Amenities) != 1 {
		t.Fatalf("unexpected value: %+v", out)
	}

	mr.FastForward(61 * time.Second)
	ok, err = c.Get(ctx, "property:beach-house", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after ttl, ok=%v err=%v", ok, err)
	}
}

func TestCache_Del(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "cities", []string{"Lisbon"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "cities"); err != nil {
		t.Fatalf("del: %v", err)
	}
	var out []string
	if ok, _ := c.Get(ctx, "cities", &out); ok {
		t.Fatalf("expected miss after delete")
	}
}
