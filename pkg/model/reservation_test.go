package model

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"disjoint before", day(1), day(3), day(5), day(8), false},
		{"disjoint after", day(9), day(10), day(5), day(8), false},
		{"contained", day(6), day(7), day(5), day(8), true},
		{"spanning", day(1), day(10), day(5), day(8), true},
		{"partial overlap", day(7), day(10), day(5), day(8), true},
		{"touching end boundary", day(8), day(10), day(5), day(8), true},
		{"touching start boundary", day(1), day(5), day(5), day(8), true},
		{"adjacent day", day(9), day(10), day(5), day(8), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2026, 3, 5, 2, 30, 45, 123, loc)

	got := DateOnly(in)
	want := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly(%v) = %v, want %v", in, got, want)
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "pending_confirmation", "confirmed", "cancelled", "completed"} {
		if _, ok := ParseStatus(valid); !ok {
			t.Errorf("expected %q to parse", valid)
		}
	}

	for _, invalid := range []string{"", "PENDING", "checked_in", "done"} {
		if _, ok := ParseStatus(invalid); ok {
			t.Errorf("expected %q to be rejected", invalid)
		}
	}
}

func TestIsCancelled(t *testing.T) {
	res := &Reservation{Status: StatusCancelled}
	if !res.IsCancelled() {
		t.Error("expected cancelled reservation to report IsCancelled")
	}

	res.Status = StatusCompleted
	if res.IsCancelled() {
		t.Error("completed is terminal for conflicts but is not cancelled")
	}
}
