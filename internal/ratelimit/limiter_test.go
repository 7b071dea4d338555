package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credforge/credgraph/internal/monitoring"
)

func fallbackLimiter(t *testing.T, config Config) *RateLimiter {
	t.Helper()
	// Empty address disables Redis, exercising the in-memory path.
	client, err := NewRedisClient("", "", 0)
	require.NoError(t, err)
	require.False(t, client.IsEnabled())
	return NewRateLimiter(client, config, monitoring.NewMetrics())
}

func TestFallbackAllowsWithinBudget(t *testing.T) {
	rl := fallbackLimiter(t, DefaultConfig())

	res, err := rl.AllowIP(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, DefaultConfig().IPLimitPerMin, res.Limit)
}

func TestFallbackBlocksAfterBurst(t *testing.T) {
	config := Config{IPLimitPerMin: 2, AnalyzeLimitPerMin: 1, BurstMultiplier: 1}
	rl := fallbackLimiter(t, config)

	// Burst floor is 5, so the sixth immediate request is the first
	// candidate for blocking.
	blocked := false
	for i := 0; i < 10; i++ {
		res, err := rl.AllowAnalyze(context.Background(), "203.0.113.8")
		require.NoError(t, err)
		if !res.Allowed {
			blocked = true
			assert.Greater(t, res.RetryAfter.Seconds(), 0.0)
			break
		}
	}
	assert.True(t, blocked, "sustained burst must eventually be limited")
}

func TestLimitsAreKeyedByIP(t *testing.T) {
	config := Config{IPLimitPerMin: 2, AnalyzeLimitPerMin: 1, BurstMultiplier: 1}
	rl := fallbackLimiter(t, config)

	for i := 0; i < 10; i++ {
		_, err := rl.AllowAnalyze(context.Background(), "203.0.113.9")
		require.NoError(t, err)
	}

	// A different IP starts with a fresh budget.
	res, err := rl.AllowAnalyze(context.Background(), "198.51.100.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestAnalyzeAndIPBudgetsAreSeparate(t *testing.T) {
	config := Config{IPLimitPerMin: 100, AnalyzeLimitPerMin: 1, BurstMultiplier: 1}
	rl := fallbackLimiter(t, config)

	ip := "203.0.113.10"
	for i := 0; i < 10; i++ {
		_, err := rl.AllowAnalyze(context.Background(), ip)
		require.NoError(t, err)
	}

	// Exhausting the analyze budget must not consume the general budget.
	res, err := rl.AllowIP(context.Background(), ip)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestGetStats(t *testing.T) {
	rl := fallbackLimiter(t, DefaultConfig())

	_, err := rl.AllowIP(context.Background(), "203.0.113.11")
	require.NoError(t, err)

	stats := rl.GetStats()
	assert.Equal(t, false, stats["redis_enabled"])
	assert.Equal(t, 1, stats["fallback_limiters"])
}
