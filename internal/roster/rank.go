package roster

import (
	"strconv"
	"strings"
)

// Rank is an enlisted grade on the roster ladder.
type Rank int

const (
	RankUnknown Rank = iota
	E1
	E2
	E3
	E4
	E5
	E6
	E7
	E8
	E9
)

// ParseRank parses a roster rank cell such as "E3". Anything else is RankUnknown.
func ParseRank(s string) Rank {
	s = strings.TrimSpace(s)
	if len(s) != 2 || (s[0] != 'E' && s[0] != 'e') {
		return RankUnknown
	}

	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 || n > 9 {
		return RankUnknown
	}

	return Rank(n)
}

// Valid reports whether r is one of E1..E9.
func (r Rank) Valid() bool {
	return r >= E1 && r <= E9
}

// String returns the roster spelling of the rank.
func (r Rank) String() string {
	if !r.Valid() {
		return "UNK"
	}

	return "E" + strconv.Itoa(int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rank) UnmarshalText(text []byte) error {
	*r = ParseRank(string(text))
	return nil
}
