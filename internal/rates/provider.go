// Package rates orchestrates rate acquisition: fetch from the remote
// source when the network is reachable, fall back to the local cache when
// it is not, and keep the cache fresh after every successful fetch.
package rates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"currency-converter-service/internal/config"
	"currency-converter-service/internal/logger"
	"currency-converter-service/internal/models"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrFetchFailed means connectivity looked fine but the remote fetch
	// still failed. Deliberately distinct from an offline fallback so the
	// caller can tell "the source is broken" apart from "we are offline".
	ErrFetchFailed = errors.New("rates: fetching from the remote source failed")
	// ErrNoDataAvailable means the service is offline and no usable cache
	// exists.
	ErrNoDataAvailable = errors.New("rates: offline and no cached rates available")
	// ErrOffline is returned by UpdateRates when connectivity is down; an
	// explicit refresh never falls back to the cache.
	ErrOffline = errors.New("rates: no connectivity to the remote source")
)

// ConnectivityChecker reports whether the remote source is reachable.
type ConnectivityChecker interface {
	IsAvailable(ctx context.Context) bool
}

// SnapshotCache persists and reloads the last known snapshot.
type SnapshotCache interface {
	Save(snapshot models.RateSnapshot) error
	Load() (models.RateSnapshot, error)
}

// Provider owns the current rate snapshot and hands out immutable values;
// callers never see shared mutable state.
type Provider struct {
	baseCurrency string
	probe        ConnectivityChecker
	fetcher      Fetcher
	cache        SnapshotCache
	logger       *logger.Logger

	snapshotMutex sync.RWMutex
	current       models.RateSnapshot
	hasCurrent    bool

	flightGroup singleflight.Group
}

// NewProvider wires the probe, remote fetcher, and cache together.
func NewProvider(configuration *config.Config, probe ConnectivityChecker, fetcher Fetcher, cache SnapshotCache, logger *logger.Logger) *Provider {
	return &Provider{
		baseCurrency: configuration.BaseCurrency,
		probe:        probe,
		fetcher:      fetcher,
		cache:        cache,
		logger:       logger,
	}
}

// GetRates returns the freshest snapshot obtainable right now.
//
// Online: fetch from the remote source, persist to the cache best-effort,
// and return the fetched snapshot. A fetch failure while online surfaces
// ErrFetchFailed and never silently substitutes cached data.
// Offline: return the cached snapshot, or ErrNoDataAvailable when the
// cache is missing or corrupt.
//
// Concurrent callers share one in-flight acquisition.
func (provider *Provider) GetRates(ctx context.Context) (models.RateSnapshot, error) {
	result, err, _ := provider.flightGroup.Do("rates", func() (interface{}, error) {
		return provider.acquire(ctx)
	})
	if err != nil {
		return models.RateSnapshot{}, err
	}
	return result.(models.RateSnapshot), nil
}

func (provider *Provider) acquire(ctx context.Context) (models.RateSnapshot, error) {
	if provider.probe.IsAvailable(ctx) {
		snapshot, err := provider.fetcher.Fetch(ctx, provider.baseCurrency)
		if err != nil {
			provider.logger.Warnf("Rate fetch failed: %v", err)
			return models.RateSnapshot{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		provider.hold(snapshot)
		provider.saveToCache(snapshot)
		return snapshot, nil
	}

	snapshot, err := provider.cache.Load()
	if err != nil {
		provider.logger.Warnf("Offline with no usable rate cache: %v", err)
		return models.RateSnapshot{}, fmt.Errorf("%w: %v", ErrNoDataAvailable, err)
	}
	provider.hold(snapshot)
	provider.logger.Infof("Serving cached rates from %s", snapshot.FetchedAt.Format(time.RFC3339))
	return snapshot, nil
}

// UpdateRates is the explicit user-triggered refresh: fetch or report the
// error, never fall back to the cache. The held snapshot changes only on
// success, so a failed refresh cannot present stale data as fresh.
func (provider *Provider) UpdateRates(ctx context.Context) (models.RateSnapshot, error) {
	if !provider.probe.IsAvailable(ctx) {
		return models.RateSnapshot{}, ErrOffline
	}

	snapshot, err := provider.fetcher.Fetch(ctx, provider.baseCurrency)
	if err != nil {
		provider.logger.Warnf("Rate refresh failed: %v", err)
		return models.RateSnapshot{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	provider.hold(snapshot)
	provider.saveToCache(snapshot)
	provider.logger.Info("Exchange rates refreshed")
	return snapshot, nil
}

// Current returns the snapshot held from the most recent successful
// acquisition. ok is false before the first one.
func (provider *Provider) Current() (snapshot models.RateSnapshot, ok bool) {
	provider.snapshotMutex.RLock()
	defer provider.snapshotMutex.RUnlock()
	return provider.current, provider.hasCurrent
}

func (provider *Provider) hold(snapshot models.RateSnapshot) {
	provider.snapshotMutex.Lock()
	provider.current = snapshot
	provider.hasCurrent = true
	provider.snapshotMutex.Unlock()
}

// saveToCache is best-effort: a failed save only matters the next time we
// are offline, so it is logged and not surfaced.
func (provider *Provider) saveToCache(snapshot models.RateSnapshot) {
	if err := provider.cache.Save(snapshot); err != nil {
		provider.logger.Warnf("Failed to cache rates: %v", err)
	}
}
