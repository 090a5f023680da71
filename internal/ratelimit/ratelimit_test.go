package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/specbook/internal/config"
	"go.uber.org/zap"
)

func TestNewWithoutRedisUsesLocalLimiter(t *testing.T) {
	limiter := New(Params{
		Config: config.Config{PublicProposalLimit: 5},
		Log:    zap.NewNop(),
	})
	if _, ok := limiter.(*localLimiter); !ok {
		t.Fatalf("expected local limiter, got %T", limiter)
	}
}

func TestLocalLimiterEnforcesWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	limiter := &localLimiter{
		limit:   3,
		counts:  make(map[string]*windowCount),
		nowFunc: func() time.Time { return now },
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "1.2.3.4:/p/proposals/:shareId")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, err := limiter.Allow(ctx, "1.2.3.4:/p/proposals/:shareId")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("expected request over the limit to be denied")
	}

	// Other keys have their own budget.
	ok, err = limiter.Allow(ctx, "5.6.7.8:/p/proposals/:shareId")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !ok {
		t.Fatal("expected a different key to be allowed")
	}

	// The counter resets when the window rolls over.
	now = now.Add(window)
	ok, err = limiter.Allow(ctx, "1.2.3.4:/p/proposals/:shareId")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !ok {
		t.Fatal("expected a fresh window to be allowed")
	}
}
