package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewStoreWithoutRedis(t *testing.T) {
	if _, ok := NewStore("").(*MemoryStore); !ok {
		t.Fatal("NewStore(\"\") did not return a memory store")
	}
	if _, ok := NewStore("not-a-redis-url").(*MemoryStore); !ok {
		t.Fatal("NewStore with an invalid URL did not return a memory store")
	}
}

// A dead Redis endpoint must degrade to the local fallback store and keep
// enforcing the limit, never admit unchecked.
func TestRedisStoreFallback(t *testing.T) {
	dead := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := &RedisStore{rdb: dead, fallback: NewMemoryStore()}
	w := PerMinute(2)

	for i := 0; i < 2; i++ {
		if d := s.Take(context.Background(), "client", w, testNow); !d.Allowed {
			t.Fatalf("request %d denied, want allowed via fallback", i+1)
		}
	}
	d := s.Take(context.Background(), "client", w, testNow)
	if d.Allowed {
		t.Fatal("3rd request allowed, want denied by fallback store")
	}
	if d.Window != w {
		t.Errorf("decision window = %v, want %v", d.Window, w)
	}
}
