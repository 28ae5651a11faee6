// Package history keeps a durable, bounded log of past conversions in a
// local JSON file. Retention bounds the log by count and by age so it
// never grows without limit while recent activity stays visible.
package history

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

// Ledger is the conversion-history store. Entries are held oldest-first
// on disk; a single mutex serializes appends and reads against the file.
type Ledger struct {
	path       string
	maxEntries int
	retention  time.Duration
	logger     *logger.Logger

	mu sync.Mutex

	// now is swapped in tests to exercise retention deterministically.
	now func() time.Time
}

// New creates a ledger backed by the configured history file.
func New(configuration *config.Config, logger *logger.Logger) *Ledger {
	return &Ledger{
		path:       configuration.HistoryFile,
		maxEntries: configuration.HistoryMaxEntries,
		retention:  time.Duration(configuration.HistoryRetentionDays) * 24 * time.Hour,
		logger:     logger,
		now:        time.Now,
	}
}

// Append records one conversion and enforces retention as a single unit:
// load the persisted entries (missing or corrupt store reads as empty),
// append, evict oldest entries beyond the count cap, then drop entries
// older than the retention window measured from this append's clock, and
// finally rewrite the whole store atomically. The file therefore never
// holds more than maxEntries entries or entries that were already expired
// at append time.
func (ledger *Ledger) Append(entry models.HistoryEntry) error {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	entries := ledger.read()
	entries = append(entries, entry)

	// Count cap first: oldest entries go when the cap is exceeded.
	if ledger.maxEntries > 0 && len(entries) > ledger.maxEntries {
		entries = entries[len(entries)-ledger.maxEntries:]
	}

	// Age cutoff applies after the count truncation.
	cutoff := ledger.now().Add(-ledger.retention)
	retained := entries[:0]
	for _, candidate := range entries {
		if candidate.Timestamp.After(cutoff) {
			retained = append(retained, candidate)
		}
	}

	return ledger.write(retained)
}

// LoadAll returns the persisted entries oldest-first. A missing or
// unreadable store yields an empty sequence, never an error; corrupt
// persisted state is always treated as absent.
func (ledger *Ledger) LoadAll() []models.HistoryEntry {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	return ledger.read()
}

func (ledger *Ledger) read() []models.HistoryEntry {
	payload, err := os.ReadFile(ledger.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			ledger.logger.Warnf("Failed to read history store: %v", err)
		}
		return nil
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		ledger.logger.Warnf("History store is unreadable, treating as empty: %v", err)
		return nil
	}
	return entries
}

// write rewrites the whole store via temp-file-then-rename so an
// interrupted append cannot leave a half-written file behind.
func (ledger *Ledger) write(entries []models.HistoryEntry) error {
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(ledger.path)
	tempFile, err := os.CreateTemp(dir, filepath.Base(ledger.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(payload); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write temp history file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close temp history file: %w", err)
	}
	if err := os.Rename(tempPath, ledger.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
