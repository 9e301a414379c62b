package timeutil

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-01-02")
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if parsed.Location() != time.UTC || parsed.Hour() != 0 {
		t.Fatalf("expected midnight UTC, got %v", parsed)
	}
	for _, bad := range []string{"2024-1-2", "02-01-2024", "2024-02-30", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestUTCDateCrossesMidnight(t *testing.T) {
	loc := time.FixedZone("test", -5*60*60)
	value := time.Date(2024, 1, 2, 23, 0, 0, 0, loc)
	if got := FormatDate(value); got != "2024-01-02" {
		t.Fatalf("expected local date, got %s", got)
	}
	if got := UTCDate(value); got != "2024-01-03" {
		t.Fatalf("expected UTC date, got %s", got)
	}
}

func TestRetentionCutoff(t *testing.T) {
	now := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	cutoff := RetentionCutoff(now, 2)
	want := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	if !cutoff.Equal(want) {
		t.Fatalf("expected %v, got %v", want, cutoff)
	}
	if got := RetentionCutoff(now, 0); !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected today's midnight for zero retention, got %v", got)
	}
}
