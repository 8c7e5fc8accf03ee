package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type payload struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

func TestStateCacheLoadsOnceWithinTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewStateCache(newClient(mr), time.Minute)

	loads := 0
	load := func(context.Context) (interface{}, error) {
		loads++
		return payload{Status: "in_progress", Count: 4}, nil
	}

	var got payload
	if err := cache.GetState(context.Background(), "state:room-1:quiz", &got, load); err != nil {
		t.Fatalf("get state: %v", err)
	}
	if got.Status != "in_progress" || got.Count != 4 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if loads != 1 {
		t.Fatalf("expected one load, got %d", loads)
	}

	// Second read should come from the cache.
	var again payload
	if err := cache.GetState(context.Background(), "state:room-1:quiz", &again, load); err != nil {
		t.Fatalf("get state: %v", err)
	}
	if loads != 1 {
		t.Fatalf("expected cache hit, loads=%d", loads)
	}
}

func TestStateCacheInvalidateForcesReload(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewStateCache(newClient(mr), time.Minute)

	loads := 0
	load := func(context.Context) (interface{}, error) {
		loads++
		return payload{Status: "waiting"}, nil
	}

	var got payload
	_ = cache.GetState(context.Background(), "state:room-2:ladder", &got, load)
	if err := cache.Invalidate(context.Background(), "state:room-2:ladder"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_ = cache.GetState(context.Background(), "state:room-2:ladder", &got, load)
	if loads != 2 {
		t.Fatalf("expected reload after invalidate, loads=%d", loads)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
