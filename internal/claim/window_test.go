package claim

import (
	"testing"
	"time"
)

func TestWithinHalfOpenBoundary(t *testing.T) {
	last := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"at last event", last, true},
		{"one hour later", last.Add(time.Hour), true},
		{"just before boundary", last.Add(window - time.Second), true},
		{"exactly at boundary", last.Add(window), false},
		{"after boundary", last.Add(window + time.Second), false},
		{"before last event", last.Add(-time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Within(last, tc.now, window); got != tc.want {
				t.Fatalf("Within(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestWithinZeroLastTime(t *testing.T) {
	if Within(time.Time{}, time.Now(), time.Hour) {
		t.Fatal("zero last event time should never be within a window")
	}
}

func TestWithinMonotonic(t *testing.T) {
	last := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	window := 3 * time.Hour

	now := last.Add(time.Hour)
	if !Within(last, now, window) {
		t.Fatal("expected to be within window")
	}
	// 一旦越过边界，之后任何时刻都不会再回到窗口内
	for _, eps := range []time.Duration{0, time.Nanosecond, time.Minute, 48 * time.Hour} {
		if Within(last, last.Add(window+eps), window) {
			t.Fatalf("window must stay closed at boundary+%v", eps)
		}
	}
}

func TestRemaining(t *testing.T) {
	last := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	if got := Remaining(last, last.Add(time.Hour), window); got != 23*time.Hour {
		t.Fatalf("expected 23h remaining, got %v", got)
	}
	if got := Remaining(last, last.Add(window), window); got != 0 {
		t.Fatalf("expected 0 remaining at boundary, got %v", got)
	}
	if got := Remaining(last, last.Add(48*time.Hour), window); got != 0 {
		t.Fatalf("expected 0 remaining after window, got %v", got)
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{23 * time.Hour, "23h 0m"},
		{2*time.Hour + 3*time.Minute, "2h 3m"},
		{30 * time.Second, "0h 1m"},
		{0, "0h 0m"},
		{-time.Minute, "0h 0m"},
	}
	for _, tc := range cases {
		if got := FormatRemaining(tc.d); got != tc.want {
			t.Fatalf("FormatRemaining(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
