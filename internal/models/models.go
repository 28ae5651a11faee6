package models

import (
	"fmt"
	"strings"
	"time"
)

// historyTimeLayout is the on-disk timestamp encoding of the history store.
const historyTimeLayout = "2006-01-02 15:04:05"

// RateSnapshot is one complete set of exchange rates quoted against Base,
// acquired at FetchedAt (remote fetch time, or the cache file's mtime when
// reloaded from disk). A snapshot is immutable once built: the provider
// replaces it wholesale on the next acquisition, and callers must treat
// the Rates map as read-only.
type RateSnapshot struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// HistoryTime is a second-precision timestamp that JSON-encodes as
// "YYYY-MM-DD HH:MM:SS", the format the history store uses on disk.
type HistoryTime struct {
	time.Time
}

// NewHistoryTime truncates t to second precision.
func NewHistoryTime(t time.Time) HistoryTime {
	return HistoryTime{t.Truncate(time.Second)}
}

func (historyTime HistoryTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + historyTime.Format(historyTimeLayout) + `"`), nil
}

func (historyTime *HistoryTime) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	parsed, err := time.ParseInLocation(historyTimeLayout, value, time.Local)
	if err != nil {
		return fmt.Errorf("invalid history timestamp %q: %w", value, err)
	}
	historyTime.Time = parsed
	return nil
}

// HistoryEntry is one recorded conversion. Entries are append-only and
// never mutated after creation.
type HistoryEntry struct {
	Timestamp       HistoryTime `json:"timestamp"`
	FromCurrency    string      `json:"from_currency"`
	ToCurrency      string      `json:"to_currency"`
	Amount          float64     `json:"amount"`
	ConvertedAmount float64     `json:"converted_amount"`
}

// ConvertRequest is the convert endpoint's request body.
type ConvertRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// ConvertResponse carries the full-precision conversion result plus a
// 2-decimal presentation string. HistoryRecorded is false when the
// conversion succeeded but the ledger write did not.
type ConvertResponse struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	Amount          float64 `json:"amount"`
	Rate            float64 `json:"rate"`
	Converted       float64 `json:"converted"`
	Result          string  `json:"result"`
	HistoryRecorded bool    `json:"history_recorded"`
}

// CurrencyInfo pairs a currency code with its display name.
type CurrencyInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ErrorResponse is the common error body for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthCheck reports service liveness and current upstream reachability.
type HealthCheck struct {
	Status    string    `json:"status"`
	Online    bool      `json:"online"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}
