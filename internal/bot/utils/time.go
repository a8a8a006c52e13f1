package utils

import (
	"fmt"
	"time"
)

// FormatTimeAgo returns a human-readable string representing how long ago a time was.
func FormatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return FormatDuration(time.Since(t)) + " ago"
}

// FormatDuration converts a duration to a coarse human-readable string.
func FormatDuration(d time.Duration) string {
	seconds := int(d.Seconds())

	if seconds < 60 {
		return "moments"
	}

	minutes := seconds / 60
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}

	days := hours / 24
	if days == 1 {
		return "1 day"
	}

	return fmt.Sprintf("%d days", days)
}

// DiscordTimestamp renders t as a Discord timestamp tag with the given style.
func DiscordTimestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}
