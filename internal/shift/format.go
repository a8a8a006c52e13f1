package shift

import (
	"fmt"
	"strings"
	"time"
)

// FormatProofLog renders a proof as a forum activity log, with times shown
// in the member's declared zone.
func FormatProofLog(p Proof) string {
	loc := p.Zone.Location()
	hours, mins := SplitDuration(p.Elapsed)

	var b strings.Builder
	fmt.Fprintf(&b, "Start time: %s (%s)\n", p.Start.In(loc).Format("15:04"), p.Zone.Name)
	fmt.Fprintf(&b, "End time: %s (%s)\n", p.End.In(loc).Format("15:04"), p.Zone.Name)
	fmt.Fprintf(&b, "Total time: %d hours %d mins\n", hours, mins)

	if note := strings.TrimSpace(p.Note); note != "" {
		fmt.Fprintf(&b, "Note: %s\n", note)
	}

	b.WriteString("Proof:")

	return b.String()
}

// SplitDuration returns whole hours and remaining whole minutes.
func SplitDuration(d time.Duration) (int, int) {
	if d < 0 {
		d = 0
	}

	total := int(d / time.Minute)

	return total / 60, total % 60
}

// FormatElapsed renders a duration as "1h 05m".
func FormatElapsed(d time.Duration) string {
	hours, mins := SplitDuration(d)
	return fmt.Sprintf("%dh %02dm", hours, mins)
}
