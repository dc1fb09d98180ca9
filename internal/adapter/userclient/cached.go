package userclient

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/devsu/transaction-service/internal/domain"
	"github.com/devsu/transaction-service/internal/infrastructure/metrics"
	"github.com/devsu/transaction-service/internal/usecase"
)

// CachedDirectory decorates a ClientDirectory with a read-through cache.
// Only successful lookups are cached.
type CachedDirectory struct {
	next    usecase.ClientDirectory
	cache   usecase.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCachedDirectory creates a new CachedDirectory.
func NewCachedDirectory(next usecase.ClientDirectory, cache usecase.Cache, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *CachedDirectory {
	return &CachedDirectory{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

func cacheKey(clientID string) string {
	return "client:" + clientID
}

// GetClient returns the cached client or loads it from the wrapped directory.
func (d *CachedDirectory) GetClient(ctx context.Context, clientID string) (*domain.ClientInfo, error) {
	key := cacheKey(clientID)

	raw, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var info domain.ClientInfo
		if jsonErr := json.Unmarshal(raw, &info); jsonErr == nil {
			d.record("hit")
			return &info, nil
		}
		d.logger.Warn().Str("client_id", clientID).Msg("discarding undecodable cached client")
	case !errors.Is(err, usecase.ErrCacheMiss):
		d.logger.Warn().Err(err).Str("client_id", clientID).Msg("client cache unavailable")
	}
	d.record("miss")

	info, err := d.next.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(info); err == nil {
		if err := d.cache.Set(ctx, key, encoded, d.ttl); err != nil {
			d.logger.Warn().Err(err).Str("client_id", clientID).Msg("failed to cache client")
		}
	}

	return info, nil
}

func (d *CachedDirectory) record(result string) {
	if d.metrics != nil {
		d.metrics.ClientCacheLookups.WithLabelValues(result).Inc()
	}
}
