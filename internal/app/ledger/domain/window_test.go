package domain

import (
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	testCases := []struct {
		filter string
		want   Window
		ok     bool
	}{
		{"", WindowAll, true},
		{"monthly", WindowCurrentMonth, true},
		{"6-last-month", WindowTrailingSixMonths, true},
		{"weekly", WindowAll, false},
	}
	for _, tc := range testCases {
		got, err := ParseWindow(tc.filter)
		if (err == nil) != tc.ok {
			t.Errorf("ParseWindow(%q) error = %v", tc.filter, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseWindow(%q) = %v, want %v", tc.filter, got, tc.want)
		}
	}
}

func TestWindow_Bounds(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	from, to, ok := WindowCurrentMonth.Bounds(now)
	if !ok || !from.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) || !to.Equal(now) {
		t.Errorf("CurrentMonth.Bounds() = %v, %v, %v", from, to, ok)
	}

	from, to, ok = WindowTrailingSixMonths.Bounds(now)
	if !ok || !from.Equal(time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)) || !to.Equal(now) {
		t.Errorf("TrailingSixMonths.Bounds() = %v, %v, %v", from, to, ok)
	}

	if _, _, ok := WindowAll.Bounds(now); ok {
		t.Error("All.Bounds() ok = true")
	}
}

func TestSameMonth(t *testing.T) {
	ref := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)
	if !SameMonth(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ref) {
		t.Error("SameMonth() = false for first day of month")
	}
	if SameMonth(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), ref) {
		t.Error("SameMonth() = true for same month of previous year")
	}
}
