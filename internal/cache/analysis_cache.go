package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stock-pulse/internal/domain"

	"github.com/redis/go-redis/v9"
)

// AnalysisCache keeps recent pipeline results behind a short TTL so
// repeated requests for the same ticker/tolerance/horizon triple do not
// re-run the pipeline. The cache lives entirely outside the analytical
// core; the core itself stays stateless.
type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAnalysisCache(client *redis.Client, ttl time.Duration) *AnalysisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnalysisCache{client: client, ttl: ttl}
}

func analysisKey(ticker string, tolerance domain.RiskTolerance, horizon domain.TimeHorizon) string {
	return fmt.Sprintf("analysis:%s:%s:%s", ticker, tolerance, horizon)
}

// Get returns the cached analysis or nil on a miss. Cache errors are
// returned so callers can log them, but a miss is not an error.
func (c *AnalysisCache) Get(ctx context.Context, ticker string, tolerance domain.RiskTolerance, horizon domain.TimeHorizon) (*domain.Analysis, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, analysisKey(ticker, tolerance, horizon)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var out domain.Analysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &out, nil
}

func (c *AnalysisCache) Set(ctx context.Context, a *domain.Analysis, horizon domain.TimeHorizon) error {
	if c == nil || c.client == nil || a == nil {
		return nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, analysisKey(a.Ticker, a.Tolerance, horizon), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
