package handlers

import (
	"testing"
	"time"
)

func TestWithinBookingWindow(t *testing.T) {
	zone := time.FixedZone("UTC-7", -7*60*60)
	// 23:30 local on Sep 1; in UTC it is already Sep 2.
	now := time.Date(2026, 9, 1, 23, 30, 0, 0, zone)
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}

	cases := []struct {
		name string
		date time.Time
		want bool
	}{
		{"today near midnight", day(2026, time.September, 1), true},
		{"tomorrow", day(2026, time.September, 2), true},
		{"last day of window", day(2026, time.September, 8), true},
		{"past window", day(2026, time.September, 9), false},
		{"yesterday", day(2026, time.August, 31), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := withinBookingWindow(tc.date, now, 7); got != tc.want {
				t.Fatalf("withinBookingWindow(%s) = %v, want %v", tc.date.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}
