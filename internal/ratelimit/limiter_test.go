package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"currency-converter-service/internal/testutils"
)

func TestLimiter_AllowWithinBurst(t *testing.T) {
	cfg := testutils.MockConfig()
	cfg.RateLimitBurst = 3
	rateLimiter := NewLimiter(cfg, testutils.MockLogger())
	defer rateLimiter.Stop()

	for i := 0; i < 3; i++ {
		if !rateLimiter.Allow("192.0.2.1") {
			t.Fatalf("Allow() = false on request %d within burst", i+1)
		}
	}
	if rateLimiter.Allow("192.0.2.1") {
		t.Error("Allow() = true beyond burst, want false")
	}
}

func TestLimiter_SeparateBucketsPerIP(t *testing.T) {
	cfg := testutils.MockConfig()
	cfg.RateLimitBurst = 1
	rateLimiter := NewLimiter(cfg, testutils.MockLogger())
	defer rateLimiter.Stop()

	if !rateLimiter.Allow("192.0.2.1") {
		t.Fatal("Allow() = false on first request")
	}
	if rateLimiter.Allow("192.0.2.1") {
		t.Error("Allow() = true for exhausted IP")
	}
	if !rateLimiter.Allow("192.0.2.2") {
		t.Error("Allow() = false for a different IP with a fresh bucket")
	}
}

func TestLimiter_DisabledAllowsEverything(t *testing.T) {
	cfg := testutils.MockConfig()
	cfg.RateLimitEnabled = false
	cfg.RateLimitBurst = 1
	rateLimiter := NewLimiter(cfg, testutils.MockLogger())
	defer rateLimiter.Stop()

	for i := 0; i < 10; i++ {
		if !rateLimiter.Allow("192.0.2.1") {
			t.Fatalf("Allow() = false with rate limiting disabled")
		}
	}
}

func TestLimiter_Refill(t *testing.T) {
	cfg := testutils.MockConfig()
	cfg.RateLimitBurst = 1
	cfg.RateLimitRequests = 100
	cfg.RateLimitWindow = 100 * time.Millisecond
	rateLimiter := NewLimiter(cfg, testutils.MockLogger())
	defer rateLimiter.Stop()

	if !rateLimiter.Allow("192.0.2.1") {
		t.Fatal("Allow() = false on first request")
	}
	if rateLimiter.Allow("192.0.2.1") {
		t.Fatal("Allow() = true with empty bucket")
	}

	time.Sleep(150 * time.Millisecond)
	if !rateLimiter.Allow("192.0.2.1") {
		t.Error("Allow() = false after refill window elapsed")
	}
}

func TestLimiter_GetClientIP(t *testing.T) {
	rateLimiter := NewLimiter(testutils.MockConfig(), testutils.MockLogger())
	defer rateLimiter.Stop()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "X-Forwarded-For",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5"},
			remoteAddr: "192.0.2.1:1234",
			want:       "203.0.113.5",
		},
		{
			name:       "X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.6"},
			remoteAddr: "192.0.2.1:1234",
			want:       "203.0.113.6",
		},
		{
			name:       "RemoteAddr fallback",
			headers:    map[string]string{},
			remoteAddr: "192.0.2.1:1234",
			want:       "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request, err := http.NewRequest(http.MethodGet, "/", nil)
			if err != nil {
				t.Fatalf("NewRequest() error = %v", err)
			}
			request.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				request.Header.Set(key, value)
			}

			if got := rateLimiter.GetClientIP(request); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
