package engine

import (
	"testing"
	"time"
)

func TestNormalizePercent(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{25, 25},
		{1, 1},
		{100, 100},
		{0, DefaultBatchPercent},
		{-5, DefaultBatchPercent},
		{101, DefaultBatchPercent},
		{1000, DefaultBatchPercent},
	}
	for _, tt := range tests {
		if got := NormalizePercent(tt.in); got != tt.want {
			t.Errorf("NormalizePercent(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPartitionCoversEverythingExactly(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		percent int
		bypass  bool
		want    []Range
	}{
		{
			name:    "100 items at 25 percent",
			total:   100,
			percent: 25,
			want:    []Range{{0, 25}, {25, 50}, {50, 75}, {75, 100}},
		},
		{
			name:    "uneven tail",
			total:   10,
			percent: 30,
			want:    []Range{{0, 3}, {3, 6}, {6, 9}, {9, 10}},
		},
		{
			name:    "quota rounds up",
			total:   7,
			percent: 25,
			want:    []Range{{0, 2}, {2, 4}, {4, 6}, {6, 7}},
		},
		{
			name:    "single item",
			total:   1,
			percent: 25,
			want:    []Range{{0, 1}},
		},
		{
			name:    "bypass is one full range",
			total:   100,
			percent: 25,
			bypass:  true,
			want:    []Range{{0, 100}},
		},
		{
			name:    "out-of-range percent falls back to default",
			total:   100,
			percent: 0,
			want:    []Range{{0, 25}, {25, 50}, {50, 75}, {75, 100}},
		},
		{
			name:  "zero items",
			total: 0,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Partition(tt.total, tt.percent, tt.bypass)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("range %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
			// No gaps, no overlaps, full coverage.
			next := 0
			for _, r := range got {
				if r.Start != next {
					t.Errorf("range %v does not start at %d", r, next)
				}
				if r.End <= r.Start {
					t.Errorf("range %v is empty or inverted", r)
				}
				next = r.End
			}
			if tt.total > 0 && next != tt.total {
				t.Errorf("coverage ends at %d, want %d", next, tt.total)
			}
		})
	}
}

func TestBatchQuota(t *testing.T) {
	if got := BatchQuota(100, 25, false); got != 25 {
		t.Errorf("BatchQuota(100, 25) = %d, want 25", got)
	}
	if got := BatchQuota(7, 25, false); got != 2 {
		t.Errorf("BatchQuota(7, 25) = %d, want 2 (ceil)", got)
	}
	if got := BatchQuota(100, 25, true); got != 100 {
		t.Errorf("BatchQuota bypass = %d, want 100", got)
	}
}

func TestWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	w := NewWindow(start, 5, false)
	if w.Exceeded(start) {
		t.Error("window exceeded at its own start")
	}
	if w.Exceeded(start.Add(4 * time.Minute)) {
		t.Error("window exceeded before the bound")
	}
	if !w.Exceeded(start.Add(5 * time.Minute)) {
		t.Error("window not exceeded exactly at the bound")
	}
	if !w.Exceeded(start.Add(time.Hour)) {
		t.Error("window not exceeded after the bound")
	}

	unbounded := NewWindow(start, 5, true)
	if unbounded.Exceeded(start.Add(240 * time.Hour)) {
		t.Error("bypass window must never expire")
	}

	defaulted := NewWindow(start, 0, false)
	if defaulted.Exceeded(start.Add(4 * time.Minute)) {
		t.Error("defaulted window tripped before the default bound")
	}
	if !defaulted.Exceeded(start.Add(time.Duration(DefaultMaxBatchMinutes) * time.Minute)) {
		t.Error("defaulted window must expire at the default bound")
	}
}
