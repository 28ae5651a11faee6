// Package cache persists the most recently known rate snapshot as a flat
// JSON object (currency code -> rate) so the service stays usable offline.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"currency-converter-service/internal/config"
	"currency-converter-service/internal/logger"
	"currency-converter-service/internal/models"
)

var (
	// ErrCacheMiss means no cache file exists yet.
	ErrCacheMiss = errors.New("rate cache: no cached rates")
	// ErrCacheCorrupt means the cache file exists but does not parse.
	ErrCacheCorrupt = errors.New("rate cache: cached rates are corrupt")
)

// RateCache stores one snapshot in a local file, fully replaced on every
// save. A single mutex serializes access; the design assumes at most one
// in-flight write per store.
type RateCache struct {
	path   string
	base   string
	logger *logger.Logger

	mu sync.Mutex
}

// New creates a rate cache backed by the configured cache file.
func New(configuration *config.Config, logger *logger.Logger) *RateCache {
	return &RateCache{
		path:   configuration.RatesCacheFile,
		base:   configuration.BaseCurrency,
		logger: logger,
	}
}

// Save serializes snapshot.Rates and atomically replaces the previous
// cache content: the payload is written to a temp file in the same
// directory and renamed over the target, so a crash mid-write never
// leaves a half-written cache behind.
func (rateCache *RateCache) Save(snapshot models.RateSnapshot) error {
	rateCache.mu.Lock()
	defer rateCache.mu.Unlock()

	payload, err := json.Marshal(snapshot.Rates)
	if err != nil {
		return fmt.Errorf("encode cached rates: %w", err)
	}
	return atomicWrite(rateCache.path, payload)
}

// Load reads the persisted rates back as a snapshot. FetchedAt is the
// cache file's modification time. Returns ErrCacheMiss when no file
// exists and ErrCacheCorrupt when the content does not parse; the caller
// must treat both as "no cached data available".
func (rateCache *RateCache) Load() (models.RateSnapshot, error) {
	rateCache.mu.Lock()
	defer rateCache.mu.Unlock()

	payload, err := os.ReadFile(rateCache.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.RateSnapshot{}, ErrCacheMiss
	}
	if err != nil {
		return models.RateSnapshot{}, fmt.Errorf("read cache file: %w", err)
	}

	var rates map[string]float64
	if err := json.Unmarshal(payload, &rates); err != nil {
		rateCache.logger.Warnf("Cached rates are unreadable: %v", err)
		return models.RateSnapshot{}, ErrCacheCorrupt
	}
	if len(rates) == 0 {
		return models.RateSnapshot{}, ErrCacheCorrupt
	}

	fetchedAt := time.Now()
	if info, statErr := os.Stat(rateCache.path); statErr == nil {
		fetchedAt = info.ModTime()
	}

	return models.RateSnapshot{
		Base:      rateCache.base,
		Rates:     rates,
		FetchedAt: fetchedAt,
	}, nil
}

// atomicWrite replaces path with payload via temp-file-then-rename.
func atomicWrite(path string, payload []byte) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(payload); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
