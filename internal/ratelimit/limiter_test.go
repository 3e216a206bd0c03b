package ratelimit

import (
	"context"
	"testing"
	"time"
)

// waitBriefly waits for a token but gives up long before any real interval
func waitBriefly(l *HostLimiter, url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, url)
}

func TestHostLimiter_PerHost(t *testing.T) {
	l := NewHostLimiter(time.Hour, 1)

	if err := waitBriefly(l, "https://www.marinetraffic.com/en/ais/home/shipid:1/zoom:10"); err != nil {
		t.Fatalf("first navigation should not wait: %v", err)
	}
	if err := waitBriefly(l, "https://www.marinetraffic.com/en/ais/home/shipid:2/zoom:10"); err == nil {
		t.Error("second navigation to the same host should wait")
	}
	if err := waitBriefly(l, "https://example.com/vessel/2"); err != nil {
		t.Errorf("other hosts have their own bucket: %v", err)
	}
}

func TestHostLimiter_WaitHonorsContext(t *testing.T) {
	l := NewHostLimiter(time.Hour, 1)
	url := "https://tracking.example/ship/1"
	if err := l.Wait(context.Background(), url); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx, url); err == nil {
		t.Error("expected Wait to fail on a cancelled context")
	}
}

func TestHostLimiter_Burst(t *testing.T) {
	l := NewHostLimiter(time.Hour, 3)
	for i := 0; i < 3; i++ {
		if err := waitBriefly(l, "https://tracking.example/"); err != nil {
			t.Fatalf("navigation %d is within the burst: %v", i, err)
		}
	}
	if err := waitBriefly(l, "https://tracking.example/"); err == nil {
		t.Error("navigation past the burst should wait")
	}
}

func TestHostLimiter_Disabled(t *testing.T) {
	l := NewHostLimiter(0, 1)
	for i := 0; i < 5; i++ {
		if err := waitBriefly(l, "https://tracking.example/"); err != nil {
			t.Fatalf("navigation %d should not wait with limiting disabled: %v", i, err)
		}
	}
	if err := waitBriefly(l, "::not a url"); err != nil {
		t.Errorf("invalid URLs pass through: %v", err)
	}
}
