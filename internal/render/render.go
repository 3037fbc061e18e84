package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hazz-dev/upreport/internal/uptime"
)

// WriteReport writes one line per check in enumeration order:
//
//	<name>, <uptime>%, <downtime> mins
//
// Failed checks render as "<name>, FAILED: <reason>".
func WriteReport(w io.Writer, results []uptime.Result) {
	for _, r := range results {
		if !r.OK() {
			fmt.Fprintf(w, "%s, FAILED: %s\n", r.CheckName, r.Error)
			continue
		}
		fmt.Fprintf(w, "%s, %.3f%%, %d mins\n", r.CheckName, r.UptimePercent, r.DowntimeMinutes)
	}
}

// WriteTable writes the same report as an aligned table.
func WriteTable(w io.Writer, results []uptime.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tUPTIME\tDOWNTIME\tERROR")
	for _, r := range results {
		if !r.OK() {
			fmt.Fprintf(tw, "%s\t—\t—\t%s\n", r.CheckName, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.3f%%\t%d mins\t\n", r.CheckName, r.UptimePercent, r.DowntimeMinutes)
	}
	tw.Flush()
}
