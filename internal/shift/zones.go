// Package shift tracks clock-in sessions and the proof that closes them.
package shift

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tf416/rosterbot/internal/setup/config"
)

var ErrUnknownTimezone = errors.New("unknown timezone")

var offsetPattern = regexp.MustCompile(`(?i)^(GMT|UTC)\s*([+-])\s*(\d{1,2})(?::?(\d{2}))?$`)

// Zone is a named fixed offset from UTC.
type Zone struct {
	Name   string
	Offset time.Duration
}

// Location returns the zone as a fixed time.Location.
func (z Zone) Location() *time.Location {
	return time.FixedZone(z.Name, int(z.Offset/time.Second))
}

// Zones resolves timezone names to offsets.
type Zones struct {
	byName map[string]Zone
}

var defaultZones = []config.TimezoneEntry{
	{Name: "UTC", Offset: 0},
	{Name: "GMT", Offset: 0},
	{Name: "BST", Offset: 1},
	{Name: "CET", Offset: 1},
	{Name: "CEST", Offset: 2},
	{Name: "EET", Offset: 2},
	{Name: "EEST", Offset: 3},
	{Name: "MSK", Offset: 3},
	{Name: "IST", Offset: 5.5},
	{Name: "SGT", Offset: 8},
	{Name: "JST", Offset: 9},
	{Name: "AEST", Offset: 10},
	{Name: "AEDT", Offset: 11},
	{Name: "NZST", Offset: 12},
	{Name: "NZDT", Offset: 13},
	{Name: "AST", Offset: -4},
	{Name: "EST", Offset: -5},
	{Name: "EDT", Offset: -4},
	{Name: "CST", Offset: -6},
	{Name: "CDT", Offset: -5},
	{Name: "MST", Offset: -7},
	{Name: "MDT", Offset: -6},
	{Name: "PST", Offset: -8},
	{Name: "PDT", Offset: -7},
	{Name: "AKST", Offset: -9},
	{Name: "HST", Offset: -10},
}

// NewZones builds a table from the built-in zones overlaid with entries.
func NewZones(entries []config.TimezoneEntry) *Zones {
	z := &Zones{byName: make(map[string]Zone, len(defaultZones)+len(entries))}

	for _, list := range [][]config.TimezoneEntry{defaultZones, entries} {
		for _, e := range list {
			name := strings.ToUpper(strings.TrimSpace(e.Name))
			z.byName[name] = Zone{
				Name:   name,
				Offset: time.Duration(math.Round(e.Offset*60)) * time.Minute,
			}
		}
	}

	return z
}

// Resolve looks a name up in the table, then tries GMT±N / UTC±N with optional :MM.
func (z *Zones) Resolve(name string) (Zone, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if zone, ok := z.byName[key]; ok {
		return zone, nil
	}

	m := offsetPattern.FindStringSubmatch(key)
	if m == nil {
		return Zone{}, fmt.Errorf("%w: %s", ErrUnknownTimezone, name)
	}

	hours, _ := strconv.Atoi(m[3])
	minutes := 0
	if m[4] != "" {
		minutes, _ = strconv.Atoi(m[4])
	}

	if hours > 14 || minutes > 59 {
		return Zone{}, fmt.Errorf("%w: %s", ErrUnknownTimezone, name)
	}

	offset := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if m[2] == "-" {
		offset = -offset
	}

	return Zone{Name: formatOffsetName(m[1], m[2], hours, minutes), Offset: offset}, nil
}

func formatOffsetName(base, sign string, hours, minutes int) string {
	if minutes == 0 {
		return fmt.Sprintf("%s%s%d", base, sign, hours)
	}

	return fmt.Sprintf("%s%s%d:%02d", base, sign, hours, minutes)
}
