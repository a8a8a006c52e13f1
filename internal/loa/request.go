// Package loa handles leave-of-absence requests and their removal.
package loa

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tf416/rosterbot/internal/nickname"
	"github.com/tf416/rosterbot/pkg/utils"
)

var requiredFields = []string{"Username:", "Start:", "End:", "Reason:"}

var endDatePattern = regexp.MustCompile(`(?i)Ends?:\s*(\d{1,2})/(\d{1,2})/(\d{2,4})`)

// Request is a parsed leave request post.
type Request struct {
	Username string
	Start    string
	End      string
	Reason   string
}

// IsRequest reports whether content carries every leave request field.
func IsRequest(content string) bool {
	for _, field := range requiredFields {
		if !strings.Contains(content, field) {
			return false
		}
	}

	return true
}

// ParseRequest extracts the request fields line by line. The username has any
// rank prefix and surrounding quotes removed.
func ParseRequest(content string) Request {
	var req Request

	for line := range strings.SplitSeq(content, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "Username:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "Username:"))
			req.Username = utils.TrimQuotes(nickname.StripPrefix(raw))
		case strings.HasPrefix(line, "Start:"):
			req.Start = strings.TrimSpace(strings.TrimPrefix(line, "Start:"))
		case strings.HasPrefix(line, "End:"):
			req.End = strings.TrimSpace(strings.TrimPrefix(line, "End:"))
		case strings.HasPrefix(line, "Reason:"):
			req.Reason = strings.TrimSpace(strings.TrimPrefix(line, "Reason:"))
		}
	}

	return req
}

// ExtractEndDate returns the first "End: d/m/y" date as written, or "" when absent.
func ExtractEndDate(content string) string {
	m := endDatePattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}

	return fmt.Sprintf("%s/%s/%s", m[1], m[2], m[3])
}
