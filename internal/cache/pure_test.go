package cache

import (
	"testing"
)

func TestHashIP(t *testing.T) {
	t.Parallel()

	seen := map[string]string{}
	for _, ip := range []string{"192.168.1.1", "192.168.1.2", "127.0.0.1", "::1", "2001:db8::7334", ""} {
		h := hashIP(ip)
		if len(h) != 16 {
			t.Errorf("hashIP(%q) length = %d, want 16", ip, len(h))
		}
		if h != hashIP(ip) {
			t.Errorf("hashIP(%q) is not deterministic", ip)
		}
		if other, dup := seen[h]; dup {
			t.Errorf("hashIP collision between %q and %q", ip, other)
		}
		seen[h] = ip
	}
}

func TestCacheKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		parts  []string
		want   string
	}{
		{"user without namespace", "", []string{userCachePrefix, "abc"}, "user:abc"},
		{"donation with namespace", "fd:", []string{donationCachePrefix, "abc"}, "fd:donation:abc"},
		{"rate limit bucket", "fd:", []string{rateLimitIPPrefix, "auth", ":", "0011"}, "fd:ratelimit:ip:auth:0011"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewWithClient(nil, WithKeyPrefix(tt.prefix))
			if got := c.key(tt.parts...); got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
		})
	}

	if userCacheTTL >= donationCacheTTL {
		t.Errorf("user TTL %s should be shorter than donation TTL %s", userCacheTTL, donationCacheTTL)
	}
}

func TestNewWithClient_Options(t *testing.T) {
	t.Parallel()

	c := NewWithClient(nil, WithPoolSize(5), WithKeyPrefix("x:"))
	if c.prefix != "x:" {
		t.Errorf("prefix = %q", c.prefix)
	}
}
