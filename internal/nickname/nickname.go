// Package nickname builds rank-prefixed display names within Discord's length limit.
package nickname

import (
	"regexp"
	"strings"

	"github.com/tf416/rosterbot/internal/roster"
	"github.com/tf416/rosterbot/pkg/utils"
)

// MaxLength is the longest nickname Discord accepts, in characters.
const MaxLength = 32

const (
	PrefixLOA     = "[LOA]"
	PrefixUnknown = "[UNK]"
)

var prefixPattern = regexp.MustCompile(`^(\[.*?\]|\(.*?\)|[A-Z]+\d*\s*-\s*)`)

var rankPrefixes = map[roster.Rank]string{
	roster.E1: "[PVT]",
	roster.E2: "[PV2]",
	roster.E3: "[PFC]",
	roster.E4: "[CPL]",
	roster.E5: "[SGT]",
	roster.E6: "[SSG]",
	roster.E7: "[SFC]",
	roster.E8: "[MSG]",
	roster.E9: "[SGM]",
}

// Prefix returns the nickname prefix for a rank.
func Prefix(rank roster.Rank) string {
	if p, ok := rankPrefixes[rank]; ok {
		return p
	}

	return PrefixUnknown
}

// HasCodename reports whether a roster codename is set, i.e. wrapped in double quotes.
func HasCodename(codename string) bool {
	codename = strings.TrimSpace(codename)
	return len(codename) >= 2 && strings.HasPrefix(codename, `"`) && strings.HasSuffix(codename, `"`)
}

// Compose builds `<prefix> "<codename>" | <username>`, or `<prefix> <username>`
// without a codename, cut to MaxLength. The username is shortened first; when
// prefix and codename leave no room, the codename is dropped.
func Compose(prefix, codename, username string) string {
	codename = strings.TrimSpace(codename)
	username = strings.TrimSpace(username)

	if HasCodename(codename) {
		head := prefix + " " + codename + " | "
		if full := head + username; runeLen(full) <= MaxLength {
			return full
		}

		if runeLen(head) < MaxLength {
			return head + utils.TruncateRunes(username, MaxLength-runeLen(head))
		}
	}

	return prefix + " " + utils.TruncateRunes(username, MaxLength-runeLen(prefix)-1)
}

// ForMember composes the rank nickname of a roster member.
func ForMember(m *roster.Member) string {
	return Compose(Prefix(m.Rank), m.Codename, m.Username)
}

// ForLOA composes the leave nickname of a roster member.
func ForLOA(m *roster.Member) string {
	return Compose(PrefixLOA, m.Codename, m.Username)
}

// StripPrefix removes a leading rank tag such as "[SGT]", "(E4)" or "CPL -"
// from a display name.
func StripPrefix(displayName string) string {
	return strings.TrimSpace(prefixPattern.ReplaceAllString(strings.TrimSpace(displayName), ""))
}

// Username recovers the roster username from a display name built by Compose.
func Username(displayName string) string {
	name := StripPrefix(displayName)
	if strings.HasPrefix(name, `"`) {
		if i := strings.LastIndex(name, "|"); i >= 0 {
			name = name[i+1:]
		}
	}

	return utils.TrimQuotes(name)
}

func runeLen(s string) int {
	return len([]rune(s))
}
