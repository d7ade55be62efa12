package goToken

import (
	"sync"
	"testing"
	"time"
)

var (
	testAccessSecret  = []byte("test-access-secret-0123456789abcdef")
	testRefreshSecret = []byte("test-refresh-secret-0123456789abcde")
	testEpoch         = time.Unix(1_700_000_000, 0)
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testCredentials(audience string) CredentialConfig {
	return CredentialConfig{
		AccessSecret:       append([]byte(nil), testAccessSecret...),
		RefreshSecret:      append([]byte(nil), testRefreshSecret...),
		Audience:           audience,
		AccessTTL:          time.Minute,
		RefreshTTL:         time.Hour,
		AccessValidateExp:  true,
		RefreshValidateExp: true,
	}
}

func testConfig(audience string) Config {
	cfg := defaultConfig()
	cfg.Credentials = testCredentials(audience)
	cfg.Metrics.Enabled = true
	return cfg
}

func buildTestEngine(t testing.TB, cfg Config, clock Clock) *Engine {
	t.Helper()

	engine, err := New().WithConfig(cfg).WithClock(clock).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestEngine(t testing.TB, clock Clock) *Engine {
	t.Helper()
	return buildTestEngine(t, testConfig("app"), clock)
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected %s, got %s (%v)", want, got, err)
	}
}
