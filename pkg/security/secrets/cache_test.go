package secrets

import (
	"fmt"
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	cache := NewCache(CacheConfig{
		Enabled: true,
		TTL:     1 * time.Minute,
		MaxSize: 10,
	})

	cache.Set("test_key", "test-value")

	value, ok := cache.Get("test_key")
	if !ok {
		t.Fatal("expected cache hit, got miss")
	}

	if value != "test-value" {
		t.Errorf("expected value 'test-value', got '%s'", value)
	}
}

func TestCache_Miss(t *testing.T) {
	cache := NewCache(CacheConfig{
		Enabled: true,
		TTL:     1 * time.Minute,
		MaxSize: 10,
	})

	_, ok := cache.Get("nonexistent")
	if ok {
		t.Error("expected cache miss, got hit")
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	cache := NewCache(CacheConfig{
		Enabled: true,
		TTL:     100 * time.Millisecond,
		MaxSize: 10,
	})

	cache.Set("test_key", "test-value")

	_, ok := cache.Get("test_key")
	if !ok {
		t.Error("expected cache hit immediately after set")
	}

	time.Sleep(150 * time.Millisecond)

	_, ok = cache.Get("test_key")
	if ok {
		t.Error("expected cache miss after TTL expiration")
	}
}

func TestCache_MaxSize(t *testing.T) {
	config := CacheConfig{
		Enabled: true,
		TTL:     1 * time.Minute,
		MaxSize: 3,
	}

	cache := NewCache(config)

	// One more entry than the cap.
	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")
	cache.Set("key4", "value4")

	if size := cache.Size(); size > config.MaxSize {
		t.Errorf("cache size %d exceeds max size %d", size, config.MaxSize)
	}

	hits := 0
	for _, key := range []string{"key1", "key2", "key3", "key4"} {
		if _, ok := cache.Get(key); ok {
			hits++
		}
	}

	if hits > config.MaxSize {
		t.Errorf("expected at most %d hits, got %d", config.MaxSize, hits)
	}
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache(CacheConfig{
		Enabled: true,
		TTL:     1 * time.Minute,
		MaxSize: 10,
	})

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")

	cache.Clear()

	for _, key := range []string{"key1", "key2"} {
		if _, ok := cache.Get(key); ok {
			t.Errorf("expected cache miss for '%s' after clear", key)
		}
	}

	if size := cache.Size(); size != 0 {
		t.Errorf("expected size 0 after clear, got %d", size)
	}
}

func TestCache_Delete(t *testing.T) {
	cache := NewCache(CacheConfig{
		Enabled: true,
		TTL:     1 * time.Minute,
		MaxSize: 10,
	})

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")

	cache.Delete("key1")

	if _, ok := cache.Get("key1"); ok {
		t.Error("expected cache miss after delete")
	}

	if _, ok := cache.Get("key2"); !ok {
		t.Error("expected cache hit for non-deleted key")
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(CacheConfig{
		Enabled: false,
		TTL:     1 * time.Minute,
		MaxSize: 10,
	})

	cache.Set("test_key", "test-value")

	if _, ok := cache.Get("test_key"); ok {
		t.Error("expected cache miss when cache is disabled")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache(CacheConfig{
		Enabled: true,
		TTL:     1 * time.Minute,
		MaxSize: 100,
	})

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key%d", n)
				cache.Set(key, "value")
				cache.Get(key)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	cache.Set("final_key", "final-value")
	if _, ok := cache.Get("final_key"); !ok {
		t.Error("cache corrupted after concurrent access")
	}
}
