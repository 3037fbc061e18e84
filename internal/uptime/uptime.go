package uptime

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hazz-dev/upreport/internal/daterange"
)

// ErrInvalidRange is returned when the date range spans less than one minute.
var ErrInvalidRange = errors.New("date range must span at least one minute")

// Interval is a period during which a check was reported down.
type Interval struct {
	From time.Time
	To   time.Time
}

// Result is the computed uptime for a single check. A non-empty Error marks
// the check as failed; the numeric fields are then meaningless.
type Result struct {
	CheckName       string
	UptimePercent   float64
	DowntimeMinutes int64
	Error           string
}

// OK reports whether the result carries computed metrics rather than a
// per-check failure.
func (r Result) OK() bool {
	return r.Error == ""
}

// Failed builds a failed Result for the named check.
func Failed(name string, err error) Result {
	return Result{CheckName: name, Error: err.Error()}
}

// Calculate reduces raw outage intervals to an uptime percentage and a
// downtime minute count for the given range. Outages are clipped to the
// range and overlapping or adjacent intervals are merged first, so a
// provider reporting the same outage under multiple causes is not counted
// twice.
func Calculate(window daterange.Range, outages []Interval) (Result, error) {
	totalMinutes := window.Minutes()
	if totalMinutes <= 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidRange, window)
	}

	merged := merge(clip(window, outages))

	var downtime time.Duration
	for _, iv := range merged {
		downtime += iv.To.Sub(iv.From)
	}
	downtimeMinutes := int64(math.Round(downtime.Minutes()))

	percent := 100 * float64(totalMinutes-downtimeMinutes) / float64(totalMinutes)
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return Result{
		UptimePercent:   percent,
		DowntimeMinutes: downtimeMinutes,
	}, nil
}

// clip trims intervals to the range and drops those entirely outside it.
func clip(window daterange.Range, outages []Interval) []Interval {
	clipped := make([]Interval, 0, len(outages))
	for _, iv := range outages {
		from, to := iv.From, iv.To
		if from.Before(window.Start) {
			from = window.Start
		}
		if to.After(window.End) {
			to = window.End
		}
		if !from.Before(to) {
			continue
		}
		clipped = append(clipped, Interval{From: from, To: to})
	}
	return clipped
}

// merge coalesces overlapping or adjacent intervals. Input intervals are
// already clipped; output is sorted and disjoint.
func merge(intervals []Interval) []Interval {
	if len(intervals) <= 1 {
		return intervals
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].From.Before(intervals[j].From)
	})
	merged := intervals[:1]
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if !iv.From.After(last.To) {
			if iv.To.After(last.To) {
				last.To = iv.To
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
