// Package activity parses, validates and approves activity logs.
package activity

import (
	"fmt"
	"regexp"
	"strconv"
)

// The label may be wrapped in bold markup: **Total time:** or **Total time**:
const label = `(?i)\*{0,2}total time\*{0,2}:\*{0,2}\s*`

var (
	labelPattern       = regexp.MustCompile(label)
	hoursMinsPattern   = regexp.MustCompile(label + `(\d+)\s*hours?\s*(\d{1,2})\s*mins?`)
	hoursOnlyPattern   = regexp.MustCompile(label + `(\d+)\s*hours?`)
	minutesOnlyPattern = regexp.MustCompile(label + `(\d{1,2})\s*mins?`)
)

// TotalTime is the duration declared on a log's "Total time:" line.
// Minutes are kept as written and are not range-checked here.
type TotalTime struct {
	Hours   int
	Minutes int
}

// String renders the time the way logs declare it.
func (t TotalTime) String() string {
	return fmt.Sprintf("%d hours %d mins", t.Hours, t.Minutes)
}

// HasTotalTime reports whether text carries a "Total time:" label at all.
func HasTotalTime(text string) bool {
	return labelPattern.MatchString(text)
}

// ParseTotalTime extracts the declared time from a log. Accepted forms are
// "Total time: H hours M mins", "Total time: H hour(s)" and "Total time: M mins".
func ParseTotalTime(text string) (TotalTime, bool) {
	if m := hoursMinsPattern.FindStringSubmatch(text); m != nil {
		hours, ok1 := atoi(m[1])
		mins, ok2 := atoi(m[2])
		if ok1 && ok2 {
			return TotalTime{Hours: hours, Minutes: mins}, true
		}
	}

	if m := hoursOnlyPattern.FindStringSubmatch(text); m != nil {
		if hours, ok := atoi(m[1]); ok {
			return TotalTime{Hours: hours}, true
		}
	}

	if m := minutesOnlyPattern.FindStringSubmatch(text); m != nil {
		if mins, ok := atoi(m[1]); ok {
			return TotalTime{Minutes: mins}, true
		}
	}

	return TotalTime{}, false
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
