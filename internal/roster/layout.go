package roster

import (
	"fmt"

	"github.com/tf416/rosterbot/internal/setup/config"
)

// Layout maps roster fields to zero-based column offsets.
type Layout struct {
	FirstRow  int
	Width     int
	Username  int
	Codename  int
	Rank      int
	Squadron  int
	Status    int
	Activity  int
	LOANotice int
	Removal   int
	Accred    int
	Notes     int
	Points    int
	DiscordID int
}

// NewLayout builds a Layout from its configuration.
func NewLayout(cfg config.SheetLayout) Layout {
	l := Layout{
		FirstRow:  cfg.FirstRow,
		Username:  cfg.Username,
		Codename:  cfg.Codename,
		Rank:      cfg.Rank,
		Squadron:  cfg.Squadron,
		Status:    cfg.Status,
		Activity:  cfg.Activity,
		LOANotice: cfg.LOANotice,
		Removal:   cfg.Removal,
		Accred:    cfg.Accred,
		Notes:     cfg.Notes,
		Points:    cfg.Points,
		DiscordID: cfg.DiscordID,
	}

	l.Width = ColumnIndex(cfg.LastColumn) + 1
	for _, col := range []int{
		l.Username, l.Codename, l.Rank, l.Squadron, l.Status, l.Activity,
		l.LOANotice, l.Removal, l.Accred, l.Notes, l.Points, l.DiscordID,
	} {
		l.Width = max(l.Width, col+1)
	}

	return l
}

// DefaultLayout returns the layout of the stock roster sheet.
func DefaultLayout() Layout {
	return NewLayout(config.DefaultLayout())
}

// StatusFormula returns the formula that derives the status cell of a row
// from its activity checkbox.
func (l Layout) StatusFormula(row int) string {
	return fmt.Sprintf(`=IF(%s%d=TRUE;"Active";"Inactive")`, ColumnName(l.Activity), row)
}

// ColumnName converts a zero-based column offset to its A1 letters.
func ColumnName(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}

	return name
}

// ColumnIndex converts A1 column letters to a zero-based offset.
// Returns -1 for an empty or invalid name.
func ColumnIndex(name string) int {
	if name == "" {
		return -1
	}

	idx := 0
	for _, c := range name {
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A') + 1
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a') + 1
		default:
			return -1
		}
	}

	return idx - 1
}
