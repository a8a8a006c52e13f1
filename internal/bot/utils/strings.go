package utils

import (
	"fmt"
	"strings"

	"github.com/disgoorg/snowflake/v2"
)

// TruncateString shortens s to at most maxLength runes, ending with "...".
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}

	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	return string(runes[:maxLength-3]) + "..."
}

// FormatMentions renders user ids as a comma separated list of mentions.
func FormatMentions(ids []snowflake.ID) string {
	if len(ids) == 0 {
		return "None"
	}

	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = fmt.Sprintf("<@%d>", id)
	}

	return strings.Join(mentions, ", ")
}

// NormalizeString replaces newlines with spaces and removes backticks so the
// text is safe inside inline code.
func NormalizeString(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "`", "")
}
