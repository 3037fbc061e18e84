package daterange

import (
	"fmt"
	"time"
)

// Layout is the date format accepted on the command line.
const Layout = "01/02/2006"

// Range is a half-open UTC time window [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// New validates that start is not after end.
func New(start, end time.Time) (Range, error) {
	if start.After(end) {
		return Range{}, fmt.Errorf("start %s is after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Range{Start: start, End: end}, nil
}

// Parse builds a Range from MM/DD/YYYY start and end dates. The start date
// begins at midnight UTC; the end date is included in full, so End is
// midnight of the following day.
func Parse(start, end string) (Range, error) {
	s, err := time.ParseInLocation(Layout, start, time.UTC)
	if err != nil {
		return Range{}, fmt.Errorf("parsing start date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(Layout, end, time.UTC)
	if err != nil {
		return Range{}, fmt.Errorf("parsing end date %q: %w", end, err)
	}
	if s.After(e) {
		return Range{}, fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return Range{Start: s, End: e.Add(24 * time.Hour)}, nil
}

// Minutes returns the length of the range in whole minutes.
func (r Range) Minutes() int64 {
	return int64(r.End.Sub(r.Start) / time.Minute)
}

// FromUnix returns Start as unix seconds, the provider's "from" parameter.
func (r Range) FromUnix() int64 {
	return r.Start.Unix()
}

// ToUnix returns End as unix seconds, the provider's "to" parameter.
func (r Range) ToUnix() int64 {
	return r.End.Unix()
}

func (r Range) String() string {
	return fmt.Sprintf("%s to %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}
