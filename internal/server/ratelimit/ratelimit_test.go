package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is advanced by hand.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(config *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(config)
	l.now = clock.now
	return l, clock
}

func TestTokenBucket_Take(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now)

	for i := 0; i < 10; i++ {
		if ok, _, _ := bucket.take(now); !ok {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}
	if ok, remaining, reset := bucket.take(now); ok || remaining != 0 || !reset.After(now) {
		t.Errorf("Expected 11th request to be denied, got ok=%v remaining=%d", ok, remaining)
	}

	// One second refills one token.
	if ok, _, _ := bucket.take(now.Add(time.Second)); !ok {
		t.Error("Expected request to be allowed after refill")
	}
	if ok, _, _ := bucket.take(now.Add(time.Second)); ok {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestLimiter_LoginEndpoint(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(10),
	})

	for i := 0; i < 5; i++ {
		if ok, _ := limiter.Allow("10.0.0.1", "/login", "POST"); !ok {
			t.Fatalf("Expected login attempt %d to be allowed", i+1)
		}
	}
	ok, info := limiter.Allow("10.0.0.1", "/login", "POST")
	if ok {
		t.Fatal("Expected 6th login attempt to be denied")
	}
	if info.Limit != 10 || info.RetryAfter <= 0 {
		t.Errorf("Unexpected info %+v", info)
	}

	// Other clients and other endpoints are unaffected.
	if ok, _ := limiter.Allow("10.0.0.2", "/login", "POST"); !ok {
		t.Error("Expected another client to be allowed")
	}
	if ok, _ := limiter.Allow("10.0.0.1", "/login", "GET"); !ok {
		t.Error("Expected login form GET to be allowed")
	}

	// 10 per minute refills one attempt every 6 seconds.
	clock.advance(6 * time.Second)
	if ok, _ := limiter.Allow("10.0.0.1", "/login", "POST"); !ok {
		t.Error("Expected login attempt after refill to be allowed")
	}
}

func TestLimiter_Lists(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1,
		DefaultWindow:   time.Hour,
		Whitelist:       map[string]bool{"10.0.0.1": true},
		Blacklist:       map[string]bool{"10.0.0.9": true},
		EndpointConfigs: DefaultEndpointConfigs(1),
	})

	for i := 0; i < 5; i++ {
		if ok, _ := limiter.Allow("10.0.0.1", "/login", "POST"); !ok {
			t.Error("Expected whitelisted client to be allowed")
		}
	}
	if ok, _ := limiter.Allow("10.0.0.9", "/tools", "GET"); ok {
		t.Error("Expected blacklisted client to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(LoadConfig(func(key string) string {
		if key == "RATE_LIMIT_ENABLED" {
			return "false"
		}
		return ""
	}))
	for i := 0; i < 100; i++ {
		if ok, _ := limiter.Allow("10.0.0.1", "/login", "POST"); !ok {
			t.Fatal("Expected all requests to be allowed when disabled")
		}
	}
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	for _, path := range []string{"/health", "/metrics", "/assets/orphaned-data.js"} {
		for i := 0; i < 3; i++ {
			if ok, _ := limiter.Allow("10.0.0.1", path, "GET"); !ok {
				t.Errorf("Expected %s to be unlimited", path)
			}
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("10.0.0.1", "/tools", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowed)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i+1), "/tools", "GET")
	}
	clock.advance(2 * time.Hour)
	for i := 0; i < 3; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i+1), "/tools", "GET")
	}

	limiter.cleanup()
	if n := limiter.Len(); n != 3 {
		t.Errorf("Expected 3 recently used buckets to survive cleanup, got %d", n)
	}
}

func TestLimiter_RunStopsWithContext(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- limiter.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(func(key string) string {
		return map[string]string{
			"RATE_LIMIT_LOGIN_PER_MINUTE": "3",
			"RATE_LIMIT_WHITELIST":        "10.0.0.1, 10.0.0.2",
		}[key]
	})
	if !cfg.Enabled {
		t.Fatal("Expected rate limiting enabled by default")
	}
	if cfg.DefaultLimit != 600 {
		t.Errorf("Expected default limit 600, got %d", cfg.DefaultLimit)
	}
	if !cfg.Whitelist["10.0.0.2"] {
		t.Error("Expected whitelist to be parsed")
	}
	login := MatchEndpoint("/login", "POST", cfg.EndpointConfigs)
	if login == nil || login.Limit != 3 || login.Burst != 3 {
		t.Errorf("Unexpected login config %+v", login)
	}
}
