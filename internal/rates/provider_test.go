package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"currency-converter-service/internal/cache"
	"currency-converter-service/internal/models"
	"currency-converter-service/internal/testutils"
)

// MockProbe is a mock implementation of ConnectivityChecker for testing
type MockProbe struct {
	available bool
}

func (m *MockProbe) IsAvailable(ctx context.Context) bool {
	return m.available
}

// MockFetcher is a mock implementation of Fetcher for testing
type MockFetcher struct {
	snapshot models.RateSnapshot
	err      error
	calls    int
}

func (m *MockFetcher) Fetch(ctx context.Context, baseCurrency string) (models.RateSnapshot, error) {
	m.calls++
	if m.err != nil {
		return models.RateSnapshot{}, m.err
	}
	return m.snapshot, nil
}

// MockCache is a mock implementation of SnapshotCache for testing
type MockCache struct {
	snapshot  models.RateSnapshot
	loadErr   error
	saveErr   error
	saveCalls int
	saved     models.RateSnapshot
}

func (m *MockCache) Save(snapshot models.RateSnapshot) error {
	m.saveCalls++
	m.saved = snapshot
	return m.saveErr
}

func (m *MockCache) Load() (models.RateSnapshot, error) {
	if m.loadErr != nil {
		return models.RateSnapshot{}, m.loadErr
	}
	return m.snapshot, nil
}

func newTestProvider(probe *MockProbe, fetcher *MockFetcher, snapshotCache *MockCache) *Provider {
	return NewProvider(testutils.MockConfig(), probe, fetcher, snapshotCache, testutils.MockLogger())
}

func TestProvider_GetRates_OnlineFetchesAndCaches(t *testing.T) {
	fetched := testutils.MockSnapshot()
	fetcher := &MockFetcher{snapshot: fetched}
	snapshotCache := &MockCache{}
	provider := newTestProvider(&MockProbe{available: true}, fetcher, snapshotCache)

	snapshot, err := provider.GetRates(context.Background())
	if err != nil {
		t.Fatalf("GetRates() error = %v", err)
	}
	if snapshot.Rates["EUR"] != fetched.Rates["EUR"] {
		t.Errorf("GetRates() EUR = %v, want %v", snapshot.Rates["EUR"], fetched.Rates["EUR"])
	}
	if snapshotCache.saveCalls != 1 {
		t.Errorf("cache save calls = %d, want 1", snapshotCache.saveCalls)
	}

	held, ok := provider.Current()
	if !ok {
		t.Fatal("Current() ok = false after successful fetch")
	}
	if held.Rates["EUR"] != fetched.Rates["EUR"] {
		t.Errorf("Current() EUR = %v, want %v", held.Rates["EUR"], fetched.Rates["EUR"])
	}
}

func TestProvider_GetRates_OfflineFallsBackToCache(t *testing.T) {
	cached := testutils.MockSnapshot()
	cached.FetchedAt = time.Now().Add(-2 * time.Hour)
	fetcher := &MockFetcher{}
	snapshotCache := &MockCache{snapshot: cached}
	provider := newTestProvider(&MockProbe{available: false}, fetcher, snapshotCache)

	snapshot, err := provider.GetRates(context.Background())
	if err != nil {
		t.Fatalf("GetRates() error = %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher calls = %d, want 0 when offline", fetcher.calls)
	}
	if !snapshot.FetchedAt.Equal(cached.FetchedAt) {
		t.Errorf("GetRates() FetchedAt = %v, want cached %v", snapshot.FetchedAt, cached.FetchedAt)
	}
}

func TestProvider_GetRates_OfflineNoCache(t *testing.T) {
	snapshotCache := &MockCache{loadErr: cache.ErrCacheMiss}
	provider := newTestProvider(&MockProbe{available: false}, &MockFetcher{}, snapshotCache)

	_, err := provider.GetRates(context.Background())
	if !errors.Is(err, ErrNoDataAvailable) {
		t.Errorf("GetRates() error = %v, want ErrNoDataAvailable", err)
	}
}

func TestProvider_GetRates_OnlineFetchFailure(t *testing.T) {
	// A fetch failure while online must not silently fall back to cache.
	cached := testutils.MockSnapshot()
	fetcher := &MockFetcher{err: errors.New("status 500")}
	snapshotCache := &MockCache{snapshot: cached}
	provider := newTestProvider(&MockProbe{available: true}, fetcher, snapshotCache)

	_, err := provider.GetRates(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("GetRates() error = %v, want ErrFetchFailed", err)
	}
	if _, ok := provider.Current(); ok {
		t.Error("Current() holds a snapshot after a failed fetch")
	}
}

func TestProvider_GetRates_CacheSaveFailureIsNotFatal(t *testing.T) {
	fetcher := &MockFetcher{snapshot: testutils.MockSnapshot()}
	snapshotCache := &MockCache{saveErr: errors.New("disk full")}
	provider := newTestProvider(&MockProbe{available: true}, fetcher, snapshotCache)

	snapshot, err := provider.GetRates(context.Background())
	if err != nil {
		t.Fatalf("GetRates() error = %v, want nil despite save failure", err)
	}
	if len(snapshot.Rates) == 0 {
		t.Error("GetRates() returned empty snapshot")
	}
}

func TestProvider_UpdateRates_OfflineNeverFallsBack(t *testing.T) {
	cached := testutils.MockSnapshot()
	fetcher := &MockFetcher{}
	snapshotCache := &MockCache{snapshot: cached}
	provider := newTestProvider(&MockProbe{available: false}, fetcher, snapshotCache)

	_, err := provider.UpdateRates(context.Background())
	if !errors.Is(err, ErrOffline) {
		t.Errorf("UpdateRates() error = %v, want ErrOffline", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher calls = %d, want 0 when offline", fetcher.calls)
	}
	if _, ok := provider.Current(); ok {
		t.Error("Current() mutated by a failed refresh")
	}
}

func TestProvider_UpdateRates_FetchFailureLeavesSnapshot(t *testing.T) {
	probe := &MockProbe{available: true}
	fetcher := &MockFetcher{snapshot: testutils.MockSnapshot()}
	snapshotCache := &MockCache{}
	provider := newTestProvider(probe, fetcher, snapshotCache)

	if _, err := provider.UpdateRates(context.Background()); err != nil {
		t.Fatalf("UpdateRates() error = %v", err)
	}
	before, _ := provider.Current()

	fetcher.err = errors.New("status 502")
	if _, err := provider.UpdateRates(context.Background()); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("UpdateRates() error = %v, want ErrFetchFailed", err)
	}

	after, ok := provider.Current()
	if !ok {
		t.Fatal("Current() lost the held snapshot after a failed refresh")
	}
	if !after.FetchedAt.Equal(before.FetchedAt) {
		t.Errorf("held snapshot changed on failed refresh: %v vs %v", after.FetchedAt, before.FetchedAt)
	}
}
