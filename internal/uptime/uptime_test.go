package uptime_test

import (
	"errors"
	"testing"
	"time"

	"github.com/hazz-dev/upreport/internal/daterange"
	"github.com/hazz-dev/upreport/internal/uptime"
)

// day is a 1440-minute range starting 2024-01-01T00:00Z.
func day(t *testing.T) daterange.Range {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := daterange.New(start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// at builds an interval offset in minutes from the start of day(t).
func at(fromMin, toMin int) uptime.Interval {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return uptime.Interval{
		From: start.Add(time.Duration(fromMin) * time.Minute),
		To:   start.Add(time.Duration(toMin) * time.Minute),
	}
}

func TestCalculate_NoOutages(t *testing.T) {
	res, err := uptime.Calculate(day(t), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UptimePercent != 100 {
		t.Errorf("UptimePercent = %v, want 100", res.UptimePercent)
	}
	if res.DowntimeMinutes != 0 {
		t.Errorf("DowntimeMinutes = %d, want 0", res.DowntimeMinutes)
	}
	if !res.OK() {
		t.Error("expected OK result")
	}
}

func TestCalculate_Example(t *testing.T) {
	// 15-minute outage in a 1440-minute day: 100*1425/1440 = 98.958...
	res, err := uptime.Calculate(day(t), []uptime.Interval{at(30, 45)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DowntimeMinutes != 15 {
		t.Errorf("DowntimeMinutes = %d, want 15", res.DowntimeMinutes)
	}
	if got := res.UptimePercent; got < 98.9583 || got > 98.9584 {
		t.Errorf("UptimePercent = %v, want ~98.9583", got)
	}
}

func TestCalculate_OverlappingNotDoubleCounted(t *testing.T) {
	res, err := uptime.Calculate(day(t), []uptime.Interval{at(0, 10), at(5, 15)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DowntimeMinutes != 15 {
		t.Errorf("DowntimeMinutes = %d, want 15 (not 20)", res.DowntimeMinutes)
	}
}

func TestCalculate_AdjacentMerged(t *testing.T) {
	res, err := uptime.Calculate(day(t), []uptime.Interval{at(0, 10), at(10, 20)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DowntimeMinutes != 20 {
		t.Errorf("DowntimeMinutes = %d, want 20", res.DowntimeMinutes)
	}
}

func TestCalculate_ClipsToRange(t *testing.T) {
	tests := []struct {
		name     string
		outages  []uptime.Interval
		wantMins int64
	}{
		{"entirely before", []uptime.Interval{at(-60, -30)}, 0},
		{"entirely after", []uptime.Interval{at(1500, 1600)}, 0},
		{"straddles start", []uptime.Interval{at(-30, 30)}, 30},
		{"straddles end", []uptime.Interval{at(1410, 1500)}, 30},
		{"covers range", []uptime.Interval{at(-100, 2000)}, 1440},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := uptime.Calculate(day(t), tt.outages)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.DowntimeMinutes != tt.wantMins {
				t.Errorf("DowntimeMinutes = %d, want %d", res.DowntimeMinutes, tt.wantMins)
			}
		})
	}
}

func TestCalculate_FullOutage(t *testing.T) {
	res, err := uptime.Calculate(day(t), []uptime.Interval{at(-100, 2000)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UptimePercent != 0 {
		t.Errorf("UptimePercent = %v, want 0", res.UptimePercent)
	}
	if res.DowntimeMinutes != 1440 {
		t.Errorf("DowntimeMinutes = %d, want 1440", res.DowntimeMinutes)
	}
}

func TestCalculate_Bounds(t *testing.T) {
	outages := []uptime.Interval{
		at(-500, 100), at(50, 200), at(190, 195), at(1400, 9999), at(700, 701),
	}
	res, err := uptime.Calculate(day(t), outages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UptimePercent < 0 || res.UptimePercent > 100 {
		t.Errorf("UptimePercent = %v, out of [0,100]", res.UptimePercent)
	}
	if res.DowntimeMinutes < 0 || res.DowntimeMinutes > 1440 {
		t.Errorf("DowntimeMinutes = %d, out of [0,1440]", res.DowntimeMinutes)
	}
}

func TestCalculate_MergeIdempotent(t *testing.T) {
	first, err := uptime.Calculate(day(t), []uptime.Interval{at(0, 10), at(5, 15), at(30, 40)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Recomputing on already-disjoint intervals yields the same downtime.
	second, err := uptime.Calculate(day(t), []uptime.Interval{at(0, 15), at(30, 40)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.DowntimeMinutes != second.DowntimeMinutes {
		t.Errorf("downtime changed on recompute: %d vs %d", first.DowntimeMinutes, second.DowntimeMinutes)
	}
}

func TestCalculate_InvalidRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := daterange.New(start, start)
	if err != nil {
		t.Fatal(err)
	}
	_, err = uptime.Calculate(r, nil)
	if !errors.Is(err, uptime.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCalculate_RoundsToNearestMinute(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// 90 seconds of downtime rounds to 2 minutes.
	outage := uptime.Interval{From: start, To: start.Add(90 * time.Second)}
	res, err := uptime.Calculate(day(t), []uptime.Interval{outage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DowntimeMinutes != 2 {
		t.Errorf("DowntimeMinutes = %d, want 2", res.DowntimeMinutes)
	}
}

func TestFailed(t *testing.T) {
	res := uptime.Failed("api", errors.New("boom"))
	if res.OK() {
		t.Error("failed result reported OK")
	}
	if res.CheckName != "api" || res.Error != "boom" {
		t.Errorf("unexpected result: %+v", res)
	}
}
