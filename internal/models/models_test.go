package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHistoryTime_JSONFormat(t *testing.T) {
	stamp := time.Date(2026, 8, 30, 18, 5, 7, 0, time.Local)

	payload, err := json.Marshal(NewHistoryTime(stamp))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(payload) != `"2026-08-30 18:05:07"` {
		t.Errorf("Marshal() = %s, want \"2026-08-30 18:05:07\"", payload)
	}

	var decoded HistoryTime
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !decoded.Equal(stamp) {
		t.Errorf("Unmarshal() = %v, want %v", decoded.Time, stamp)
	}
}

func TestHistoryTime_TruncatesToSeconds(t *testing.T) {
	stamp := time.Date(2026, 8, 30, 18, 5, 7, 999999999, time.Local)

	historyTime := NewHistoryTime(stamp)
	if historyTime.Nanosecond() != 0 {
		t.Errorf("NewHistoryTime() nanoseconds = %d, want 0", historyTime.Nanosecond())
	}
}

func TestHistoryTime_UnmarshalRejectsGarbage(t *testing.T) {
	var decoded HistoryTime
	if err := json.Unmarshal([]byte(`"not a time"`), &decoded); err == nil {
		t.Error("Unmarshal() error = nil, want parse error")
	}
}

func TestHistoryEntry_JSONFieldNames(t *testing.T) {
	entry := HistoryEntry{
		Timestamp:       NewHistoryTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)),
		FromCurrency:    "USD",
		ToCurrency:      "EUR",
		Amount:          100,
		ConvertedAmount: 92,
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"timestamp", "from_currency", "to_currency", "amount", "converted_amount"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("marshaled entry missing field %q: %s", key, payload)
		}
	}
}
