package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tf416/rosterbot/pkg/utils"
	"go.uber.org/zap"
)

var (
	ErrMemberNotFound = errors.New("member not found on roster")
	ErrMemberExists   = errors.New("member already on roster")
)

// Changes lists the fields to persist for a member. Nil fields are left untouched.
type Changes struct {
	Points *int
	Rank   *Rank
	Active *bool
}

// NewMember holds the values for a freshly created roster row.
type NewMember struct {
	Username  string
	DiscordID string
	Squadron  string
}

// Roster provides typed access to the roster spreadsheet.
type Roster struct {
	sheet    Sheet
	layout   Layout
	cache    *Cache
	logger   *zap.Logger
	createMu sync.Mutex
	locks    memberLocks
}

// New creates a Roster. cache may be nil to always read through to the sheet.
func New(sheet Sheet, layout Layout, cache *Cache, logger *zap.Logger) *Roster {
	return &Roster{
		sheet:  sheet,
		layout: layout,
		cache:  cache,
		logger: logger.Named("roster"),
	}
}

// Layout returns the column layout of the roster.
func (r *Roster) Layout() Layout {
	return r.layout
}

// Members returns every decoded member, served from the snapshot cache when available.
func (r *Roster) Members(ctx context.Context) ([]*Member, error) {
	if r.cache == nil {
		return r.load(ctx)
	}

	return r.cache.Snapshot(ctx, r.load)
}

// FindByUsername looks a member up by roster username, ignoring case and accents.
func (r *Roster) FindByUsername(ctx context.Context, username string) (*Member, error) {
	if r.cache != nil {
		if member, ok := r.cache.GetMember(ctx, username); ok {
			return member, nil
		}
	}

	members, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, m := range members {
		if utils.SameName(m.Username, username) {
			r.remember(ctx, m)
			return m, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, username)
}

// FindByDiscordID looks a member up by the Discord id stored on their row.
func (r *Roster) FindByDiscordID(ctx context.Context, discordID string) (*Member, error) {
	if discordID == "" {
		return nil, fmt.Errorf("%w: empty discord id", ErrMemberNotFound)
	}

	members, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, m := range members {
		if m.DiscordID == discordID {
			r.remember(ctx, m)
			return m, nil
		}
	}

	return nil, fmt.Errorf("%w: discord id %s", ErrMemberNotFound, discordID)
}

// Lock serializes read-modify-write sequences on one member. Callers hold it
// across Refresh and Update and must release it with the returned func.
func (r *Roster) Lock(username string) (unlock func()) {
	return r.locks.lock(username)
}

// Refresh reloads member from the sheet, bypassing the cache. A Discord id
// filled in by the caller is kept when the row has none.
func (r *Roster) Refresh(ctx context.Context, member *Member) error {
	members, err := r.load(ctx)
	if err != nil {
		return err
	}

	for _, m := range members {
		if utils.SameName(m.Username, member.Username) {
			discordID := member.DiscordID
			*member = *m

			if member.DiscordID == "" {
				member.DiscordID = discordID
			}

			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrMemberNotFound, member.Username)
}

// Update persists the given changes in one batch write and applies them to member.
func (r *Roster) Update(ctx context.Context, member *Member, c Changes) error {
	var cells []Cell

	if c.Points != nil {
		cells = append(cells, Cell{Row: member.Row, Col: r.layout.Points, Value: *c.Points})
	}

	if c.Rank != nil {
		cells = append(cells, Cell{Row: member.Row, Col: r.layout.Rank, Value: c.Rank.String()})
	}

	if c.Active != nil {
		cells = append(cells, Cell{Row: member.Row, Col: r.layout.Activity, Value: *c.Active})
	}

	if len(cells) == 0 {
		return nil
	}

	if err := r.sheet.Update(ctx, cells); err != nil {
		return fmt.Errorf("failed to update %s: %w", member.Username, err)
	}

	r.forget(ctx, member.Username)

	if c.Points != nil {
		member.Points = *c.Points
	}

	if c.Rank != nil {
		member.Rank = *c.Rank
	}

	if c.Active != nil {
		member.Active = *c.Active
	}

	return nil
}

// EnterLOA marks the member as on leave: notice set to LoA, activity
// unchecked and the status cell blacked out. A non-empty note is attached
// to the notice cell.
func (r *Roster) EnterLOA(ctx context.Context, member *Member, note string) error {
	err := r.sheet.Update(ctx, []Cell{
		{Row: member.Row, Col: r.layout.LOANotice, Value: NoticeLOA},
		{Row: member.Row, Col: r.layout.Activity, Value: false},
	})
	if err != nil {
		return fmt.Errorf("failed to set LOA for %s: %w", member.Username, err)
	}

	r.forget(ctx, member.Username)
	member.LOANotice = NoticeLOA
	member.Active = false

	black := ColorBlack
	if err := r.sheet.Format(ctx, member.Row, r.layout.Status, Format{Background: &black, Foreground: &black}); err != nil {
		r.logger.Warn("Failed to black out status cell",
			zap.String("username", member.Username),
			zap.Error(err))
	}

	if note != "" {
		if err := r.sheet.Format(ctx, member.Row, r.layout.LOANotice, Format{Note: &note}); err != nil {
			r.logger.Warn("Failed to attach LOA note",
				zap.String("username", member.Username),
				zap.Error(err))
		}
	}

	return nil
}

// LeaveLOA clears leave: notice back to N/A, the status formula restored and
// the status cell coloured red.
func (r *Roster) LeaveLOA(ctx context.Context, member *Member) error {
	err := r.sheet.Update(ctx, []Cell{
		{Row: member.Row, Col: r.layout.LOANotice, Value: NoticeNone},
		{Row: member.Row, Col: r.layout.Status, Value: r.layout.StatusFormula(member.Row)},
	})
	if err != nil {
		return fmt.Errorf("failed to clear LOA for %s: %w", member.Username, err)
	}

	r.forget(ctx, member.Username)
	member.LOANotice = NoticeNone

	member.Status = StatusInactive
	if member.Active {
		member.Status = StatusActive
	}

	red := ColorRed
	white := Color{Red: 1, Green: 1, Blue: 1}
	empty := ""

	if err := r.sheet.Format(ctx, member.Row, r.layout.Status, Format{Background: &red, Foreground: &white}); err != nil {
		r.logger.Warn("Failed to restore status cell colour",
			zap.String("username", member.Username),
			zap.Error(err))
	}

	if err := r.sheet.Format(ctx, member.Row, r.layout.LOANotice, Format{Note: &empty}); err != nil {
		r.logger.Warn("Failed to clear LOA note",
			zap.String("username", member.Username),
			zap.Error(err))
	}

	return nil
}

// Create appends a member by copying the last populated row and resetting
// its fields, which keeps the row's dropdowns and formatting.
func (r *Roster) Create(ctx context.Context, nm NewMember) (*Member, error) {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	rows, err := r.sheet.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	next := -1
	for i, cells := range rows {
		m, err := DecodeRow(r.layout, r.layout.FirstRow+i, cells)
		if err != nil {
			if next < 0 {
				next = r.layout.FirstRow + i
			}
			continue
		}

		if utils.SameName(m.Username, nm.Username) {
			return nil, fmt.Errorf("%w: %s", ErrMemberExists, nm.Username)
		}
	}

	if next < 0 {
		next = r.layout.FirstRow + len(rows)
	}

	template := max(next-1, r.layout.FirstRow)

	values, err := r.sheet.RowFormulas(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("failed to read template row %d: %w", template, err)
	}

	row := make([]any, r.layout.Width)
	copy(row, values)

	for i := range row {
		if row[i] == nil {
			row[i] = ""
		}
	}

	row[r.layout.Username] = nm.Username
	row[r.layout.Codename] = ""
	row[r.layout.Rank] = E1.String()
	row[r.layout.Squadron] = nm.Squadron
	row[r.layout.Status] = StatusInactive
	row[r.layout.Activity] = false
	row[r.layout.LOANotice] = NoticeNone
	row[r.layout.Removal] = NoticeNone
	row[r.layout.Accred] = NoticeNone
	row[r.layout.Notes] = ""
	row[r.layout.Points] = 0
	// Leading apostrophe keeps the id a string instead of a rounded number.
	row[r.layout.DiscordID] = "'" + nm.DiscordID

	if err := r.sheet.UpdateRow(ctx, next, row); err != nil {
		return nil, fmt.Errorf("failed to write row %d: %w", next, err)
	}

	r.logger.Info("Created roster entry",
		zap.String("username", nm.Username),
		zap.String("squadron", nm.Squadron),
		zap.Int("row", next))

	return &Member{
		Row:       next,
		Username:  nm.Username,
		Rank:      E1,
		Squadron:  nm.Squadron,
		Status:    StatusInactive,
		LOANotice: NoticeNone,
		DiscordID: nm.DiscordID,
	}, nil
}

// ResetActivity unchecks the activity box of every row in the contiguous
// block starting at the first data row. Returns the number of rows reset.
func (r *Roster) ResetActivity(ctx context.Context) (int, error) {
	rows, err := r.sheet.Rows(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read roster: %w", err)
	}

	var cells []Cell

	for i, row := range rows {
		if isBlank(row, 0) && isBlank(row, r.layout.Username) {
			break
		}

		cells = append(cells, Cell{Row: r.layout.FirstRow + i, Col: r.layout.Activity, Value: false})
	}

	if len(cells) == 0 {
		return 0, nil
	}

	if err := r.sheet.Update(ctx, cells); err != nil {
		return 0, fmt.Errorf("failed to reset activity: %w", err)
	}

	r.logger.Info("Reset weekly activity", zap.Int("rows", len(cells)))

	return len(cells), nil
}

// load reads and decodes every populated row straight from the sheet.
func (r *Roster) load(ctx context.Context) ([]*Member, error) {
	rows, err := r.sheet.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	members := make([]*Member, 0, len(rows))
	for i, cells := range rows {
		m, err := DecodeRow(r.layout, r.layout.FirstRow+i, cells)
		if err != nil {
			continue
		}

		members = append(members, m)
	}

	return members, nil
}

func (r *Roster) remember(ctx context.Context, m *Member) {
	if r.cache != nil {
		r.cache.SetMember(ctx, m)
	}
}

func (r *Roster) forget(ctx context.Context, username string) {
	if r.cache != nil {
		r.cache.EvictMember(ctx, username)
	}
}

func isBlank(row []any, col int) bool {
	if col >= len(row) || row[col] == nil {
		return true
	}

	s, ok := row[col].(string)

	return ok && utils.CompressAllWhitespace(s) == ""
}
