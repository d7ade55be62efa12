package goToken

import (
	"testing"
	"time"
)

func TestLintCleanConfig(t *testing.T) {
	cfg := testConfig("app")
	if ws := cfg.Lint(); len(ws) != 0 {
		t.Fatalf("expected no warnings, got %v", ws.Codes())
	}
}

func TestLintWarnings(t *testing.T) {
	tests := []struct {
		code   string
		mutate func(*Config)
	}{
		{lintAccessExceedsRefresh, func(c *Config) { c.Credentials.AccessTTL = 2 * time.Hour }},
		{lintAccessExpDisabled, func(c *Config) { c.Credentials.AccessValidateExp = false }},
		{lintRefreshExpDisabled, func(c *Config) { c.Credentials.RefreshValidateExp = false }},
		{lintSharedSecret, func(c *Config) { c.Credentials.RefreshSecret = c.Credentials.AccessSecret }},
		{lintShortSecret, func(c *Config) { c.Credentials.AccessSecret = []byte("tiny") }},
		{lintAccessTTLLong, func(c *Config) { c.Credentials.AccessTTL = 16 * time.Minute }},
		{lintRefreshTTLLong, func(c *Config) { c.Credentials.RefreshTTL = 31 * 24 * time.Hour }},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			cfg := testConfig("app")
			tc.mutate(&cfg)
			ws := cfg.Lint()
			if !ws.Has(tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, ws.Codes())
			}
			for _, w := range ws {
				if w.Message == "" {
					t.Fatalf("warning %s has no message", w.Code)
				}
			}
		})
	}
}

func TestLintShortSecretDisabledByZeroMinimum(t *testing.T) {
	cfg := testConfig("app")
	cfg.Security.MinSecretLength = 0
	cfg.Credentials.AccessSecret = []byte("tiny")
	if cfg.Lint().Has(lintShortSecret) {
		t.Fatal("MinSecretLength 0 disables the short secret warning")
	}
}
