package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheHelper(client, prefix), mr
}

type cachedQuiz struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t, "quiz:")

	want := cachedQuiz{ID: 7, Title: "GK Sprint"}
	if err := helper.Set(ctx, "id:7", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("quiz:id:7") {
		t.Fatal("key not stored under prefixed name")
	}

	var got cachedQuiz
	if err := helper.Get(ctx, "id:7", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	t.Run("missing key", func(t *testing.T) {
		var dest cachedQuiz
		if err := helper.Get(ctx, "id:999", &dest); !errors.Is(err, ErrCacheNotFound) {
			t.Errorf("Get() error = %v, want ErrCacheNotFound", err)
		}
	})

	t.Run("expiry", func(t *testing.T) {
		if err := helper.Set(ctx, "id:8", want, time.Second); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		mr.FastForward(2 * time.Second)

		var dest cachedQuiz
		if err := helper.Get(ctx, "id:8", &dest); !errors.Is(err, ErrCacheNotFound) {
			t.Errorf("Get() after ttl error = %v, want ErrCacheNotFound", err)
		}
	})
}

func TestNilClientDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "quiz:")

	if err := helper.Set(ctx, "id:1", cachedQuiz{}, time.Minute); err != nil {
		t.Errorf("Set() with nil client error = %v, want nil", err)
	}
	var dest cachedQuiz
	if err := helper.Get(ctx, "id:1", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() with nil client error = %v, want ErrCacheNotAvailable", err)
	}
	if err := helper.Delete(ctx, "id:1"); err != nil {
		t.Errorf("Delete() with nil client error = %v, want nil", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t, "user:")

	for _, key := range []string{"id:1", "id:2", "id:3"} {
		if err := helper.SetString(ctx, key, "cached", time.Minute); err != nil {
			t.Fatalf("SetString() error = %v", err)
		}
	}

	if err := helper.Delete(ctx, "id:1", "id:2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if mr.Exists("user:id:1") || mr.Exists("user:id:2") {
		t.Error("deleted keys still present")
	}
	if !mr.Exists("user:id:3") {
		t.Error("untouched key was removed")
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t, "exists:")

	if err := helper.SetString(ctx, "quiz:7", "1", time.Minute); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}

	ok, err := helper.Exists(ctx, "quiz:7")
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v, want true", ok, err)
	}
	ok, err = helper.Exists(ctx, "quiz:8")
	if err != nil || ok {
		t.Errorf("Exists() on missing key = %v, %v, want false", ok, err)
	}
}

func TestInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t, "leaderboard:")

	for _, key := range []string{"quiz:7:top10", "quiz:7:top50", "quiz:8:top10"} {
		if err := helper.SetString(ctx, key, "cached", time.Minute); err != nil {
			t.Fatalf("SetString() error = %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "quiz:7*"); err != nil {
		t.Fatalf("InvalidatePattern() error = %v", err)
	}
	if mr.Exists("leaderboard:quiz:7:top10") || mr.Exists("leaderboard:quiz:7:top50") {
		t.Error("matching keys survived invalidation")
	}
	if !mr.Exists("leaderboard:quiz:8:top10") {
		t.Error("non-matching key was removed")
	}
}

func TestCacheOrExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("miss executes fetch", func(t *testing.T) {
		helper, _ := newTestHelper(t, "quiz:")

		calls := 0
		var got cachedQuiz
		err := helper.CacheOrExecute(ctx, "id:7", &got, time.Minute, func() (interface{}, error) {
			calls++
			return cachedQuiz{ID: 7, Title: "GK Sprint"}, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if calls != 1 {
			t.Errorf("fetch calls = %d, want 1", calls)
		}
		if got.Title != "GK Sprint" {
			t.Errorf("got = %+v", got)
		}
	})

	t.Run("hit skips fetch", func(t *testing.T) {
		helper, _ := newTestHelper(t, "quiz:")

		if err := helper.Set(ctx, "id:7", cachedQuiz{ID: 7, Title: "Cached"}, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		var got cachedQuiz
		err := helper.CacheOrExecute(ctx, "id:7", &got, time.Minute, func() (interface{}, error) {
			t.Fatal("fetch must not run on a cache hit")
			return nil, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if got.Title != "Cached" {
			t.Errorf("got = %+v, want the cached copy", got)
		}
	})

	t.Run("fetch error propagates", func(t *testing.T) {
		helper, _ := newTestHelper(t, "quiz:")

		var got cachedQuiz
		err := helper.CacheOrExecute(ctx, "id:9", &got, time.Minute, func() (interface{}, error) {
			return nil, errors.New("database down")
		})
		if err == nil {
			t.Error("CacheOrExecute() expected error")
		}
	})
}

func TestCacheManagerHealthCheck(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cm := NewCacheManager(client)
	if err := cm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := NewCacheManager(nil).HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("nil manager HealthCheck() error = %v, want ErrCacheNotAvailable", err)
	}
}
