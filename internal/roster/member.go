package roster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyRow is returned when decoding a row that has no username.
var ErrEmptyRow = errors.New("roster row has no username")

// Status values written to the status column.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusLOA      = "LOA"
)

// LOA notice values.
const (
	NoticeLOA  = "LoA"
	NoticeNone = "N/A"
)

// Member is one decoded roster row.
type Member struct {
	Row       int    `json:"row"`
	Username  string `json:"username"`
	Codename  string `json:"codename"`
	Rank      Rank   `json:"rank"`
	Squadron  string `json:"squadron"`
	Status    string `json:"status"`
	Active    bool   `json:"active"`
	LOANotice string `json:"loaNotice"`
	Notes     string `json:"notes"`
	Points    int    `json:"points"`
	DiscordID string `json:"discordId"`
}

// OnLOA reports whether the member is currently on leave.
func (m *Member) OnLOA() bool {
	return strings.EqualFold(m.LOANotice, NoticeLOA) || strings.EqualFold(m.Status, StatusLOA)
}

// Listed reports whether the member has one of the statuses shown on the leaderboard.
func (m *Member) Listed() bool {
	switch m.Status {
	case StatusActive, StatusInactive, StatusLOA:
		return true
	}

	return false
}

// DecodeRow converts the raw cells of a sheet row into a Member.
// Missing trailing cells are treated as empty.
func DecodeRow(l Layout, row int, cells []any) (*Member, error) {
	get := func(col int) string {
		if col < 0 || col >= len(cells) || cells[col] == nil {
			return ""
		}

		return strings.TrimSpace(fmt.Sprint(cells[col]))
	}

	username := get(l.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: row %d", ErrEmptyRow, row)
	}

	points, err := strconv.Atoi(strings.ReplaceAll(get(l.Points), ",", ""))
	if err != nil || points < 0 {
		points = 0
	}

	return &Member{
		Row:       row,
		Username:  username,
		Codename:  get(l.Codename),
		Rank:      ParseRank(get(l.Rank)),
		Squadron:  get(l.Squadron),
		Status:    get(l.Status),
		Active:    strings.EqualFold(get(l.Activity), "TRUE"),
		LOANotice: get(l.LOANotice),
		Notes:     get(l.Notes),
		Points:    points,
		DiscordID: strings.TrimPrefix(get(l.DiscordID), "'"),
	}, nil
}
