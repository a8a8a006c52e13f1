// Package rostertest provides an in-memory roster sheet for tests.
package rostertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tf416/rosterbot/internal/roster"
)

// Sheet is an in-memory roster.Sheet. Row numbers match the real sheet, so
// the first stored row is layout.FirstRow.
type Sheet struct {
	mu       sync.Mutex
	firstRow int
	rows     [][]any
	formats  map[[2]int]roster.Format

	// Err, when set, is returned by every call.
	Err error
	// Writes counts calls to Update and UpdateRow.
	Writes int
	// Delay slows every Rows call, widening read-modify-write windows.
	Delay time.Duration
}

// NewSheet creates a sheet whose first data row is firstRow.
func NewSheet(firstRow int, rows ...[]any) *Sheet {
	return &Sheet{
		firstRow: firstRow,
		rows:     rows,
		formats:  make(map[[2]int]roster.Format),
	}
}

// MemberRow builds a row in the default layout.
func MemberRow(username, codename, rank string, points int, discordID string, active bool, notice string) []any {
	l := roster.DefaultLayout()
	row := make([]any, l.Width)

	for i := range row {
		row[i] = ""
	}

	status := roster.StatusInactive
	if active {
		status = roster.StatusActive
	}

	if strings.EqualFold(notice, roster.NoticeLOA) {
		status = roster.StatusLOA
	}

	row[l.Username] = username
	row[l.Codename] = codename
	row[l.Rank] = rank
	row[l.Squadron] = "Protection"
	row[l.Status] = status
	row[l.Activity] = strings.ToUpper(fmt.Sprint(active))
	row[l.LOANotice] = notice
	row[l.Points] = fmt.Sprint(points)
	row[l.DiscordID] = discordID

	return row
}

// Rows implements roster.Sheet.
func (s *Sheet) Rows(_ context.Context) ([][]any, error) {
	time.Sleep(s.Delay)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	out := make([][]any, len(s.rows))
	for i, row := range s.rows {
		out[i] = append([]any(nil), row...)
	}

	return out, nil
}

// RowFormulas implements roster.Sheet.
func (s *Sheet) RowFormulas(_ context.Context, row int) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	idx := row - s.firstRow
	if idx < 0 || idx >= len(s.rows) {
		return nil, nil
	}

	return append([]any(nil), s.rows[idx]...), nil
}

// Update implements roster.Sheet.
func (s *Sheet) Update(_ context.Context, cells []roster.Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	s.Writes++

	for _, c := range cells {
		s.set(c.Row, c.Col, c.Value)
	}

	return nil
}

// UpdateRow implements roster.Sheet.
func (s *Sheet) UpdateRow(_ context.Context, row int, values []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	s.Writes++

	for col, v := range values {
		s.set(row, col, v)
	}

	return nil
}

// Format implements roster.Sheet.
func (s *Sheet) Format(_ context.Context, row, col int, f roster.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	cur := s.formats[[2]int{row, col}]
	if f.Background != nil {
		cur.Background = f.Background
	}

	if f.Foreground != nil {
		cur.Foreground = f.Foreground
	}

	if f.Note != nil {
		cur.Note = f.Note
	}

	s.formats[[2]int{row, col}] = cur

	return nil
}

// Cell returns the displayed value of a cell.
func (s *Sheet) Cell(row, col int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := row - s.firstRow
	if idx < 0 || idx >= len(s.rows) || col >= len(s.rows[idx]) || s.rows[idx][col] == nil {
		return ""
	}

	return fmt.Sprint(s.rows[idx][col])
}

// FormatAt returns the formatting applied to a cell.
func (s *Sheet) FormatAt(row, col int) roster.Format {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.formats[[2]int{row, col}]
}

// set stores a value the way the spreadsheet would display it.
func (s *Sheet) set(row, col int, v any) {
	idx := row - s.firstRow
	for len(s.rows) <= idx {
		s.rows = append(s.rows, nil)
	}

	for len(s.rows[idx]) <= col {
		s.rows[idx] = append(s.rows[idx], "")
	}

	switch val := v.(type) {
	case bool:
		v = strings.ToUpper(fmt.Sprint(val))
	case int:
		v = fmt.Sprint(val)
	case string:
		v = strings.TrimPrefix(val, "'")
		if strings.HasPrefix(val, "=IF(") {
			// Formula results are not evaluated here.
			v = roster.StatusInactive
		}
	}

	s.rows[idx][col] = v
}
