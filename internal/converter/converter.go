// Package converter computes conversions against the current rate
// snapshot and records each successful one in the history ledger.
package converter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"currency-converter-service/internal/currency"
	"currency-converter-service/internal/logger"
	"currency-converter-service/internal/models"
)

var (
	// ErrInvalidAmount rejects negative input amounts.
	ErrInvalidAmount = errors.New("convert: amount must not be negative")
	// ErrRatesUnavailable wraps a rate-provider failure.
	ErrRatesUnavailable = errors.New("convert: exchange rates are unavailable")
)

// UnsupportedCurrencyError reports a code outside the supported set.
type UnsupportedCurrencyError struct {
	Code string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("convert: unsupported currency code %q", e.Code)
}

// RateNotFoundError reports a supported code missing from the snapshot.
type RateNotFoundError struct {
	Code string
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("convert: no rate for currency %q", e.Code)
}

// SnapshotSource yields the snapshot a conversion computes against.
type SnapshotSource interface {
	GetRates(ctx context.Context) (models.RateSnapshot, error)
}

// HistoryAppender records completed conversions.
type HistoryAppender interface {
	Append(entry models.HistoryEntry) error
}

// Result is a completed conversion. Recorded is false when the history
// write failed; the numeric result is valid either way.
type Result struct {
	Entry    models.HistoryEntry
	Rate     float64
	Recorded bool
}

// Converter validates requests, applies the snapshot rate, and logs the
// outcome to the ledger.
type Converter struct {
	provider SnapshotSource
	ledger   HistoryAppender
	logger   *logger.Logger

	now func() time.Time
}

// New creates a converter.
func New(provider SnapshotSource, ledger HistoryAppender, logger *logger.Logger) *Converter {
	return &Converter{
		provider: provider,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

// Convert computes amount * rates[toCode] and appends a history entry.
//
// The source code is validated but does not rescale the result: the
// snapshot is quoted against the base currency and the arithmetic treats
// the input amount as base-denominated whatever fromCode says. That
// asymmetry is long-standing observable behavior of this system and is
// kept deliberately rather than corrected here.
//
// A ledger failure does not unwind the conversion; the result comes back
// with Recorded=false so the caller can report it separately.
func (converter *Converter) Convert(ctx context.Context, amount float64, fromCode, toCode string) (Result, error) {
	if amount < 0 {
		return Result{}, ErrInvalidAmount
	}

	fromCode = strings.ToUpper(strings.TrimSpace(fromCode))
	toCode = strings.ToUpper(strings.TrimSpace(toCode))
	if !currency.IsSupported(fromCode) {
		return Result{}, &UnsupportedCurrencyError{Code: fromCode}
	}
	if !currency.IsSupported(toCode) {
		return Result{}, &UnsupportedCurrencyError{Code: toCode}
	}

	snapshot, err := converter.provider.GetRates(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRatesUnavailable, err)
	}

	rate, ok := snapshot.Rates[toCode]
	if !ok {
		return Result{}, &RateNotFoundError{Code: toCode}
	}

	entry := models.HistoryEntry{
		Timestamp:       models.NewHistoryTime(converter.now()),
		FromCurrency:    fromCode,
		ToCurrency:      toCode,
		Amount:          amount,
		ConvertedAmount: amount * rate,
	}

	recorded := true
	if appendErr := converter.ledger.Append(entry); appendErr != nil {
		recorded = false
		converter.logger.Errorf("Conversion computed but history append failed: %v", appendErr)
	}

	return Result{Entry: entry, Rate: rate, Recorded: recorded}, nil
}
