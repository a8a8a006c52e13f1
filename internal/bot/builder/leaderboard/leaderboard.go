package leaderboard

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/tf416/rosterbot/internal/bot/constants"
	"github.com/tf416/rosterbot/internal/nickname"
	"github.com/tf416/rosterbot/internal/roster"
	"github.com/tf416/rosterbot/pkg/utils"
)

// Entry is one leaderboard line.
type Entry struct {
	Name   string
	Points int
}

// Entries keeps members with a listed status and orders them by points,
// highest first, then by name.
func Entries(members []*roster.Member) []Entry {
	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		if !m.Listed() {
			continue
		}

		entries = append(entries, Entry{Name: nickname.ForMember(m), Points: m.Points})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}

		return strings.Compare(utils.FoldName(a.Name), utils.FoldName(b.Name))
	})

	return entries
}

// Builder creates the leaderboard embed for one page.
type Builder struct {
	entries []Entry
	page    int
	now     time.Time
}

// NewBuilder creates a builder for the given zero-based page, clamped to the
// available pages.
func NewBuilder(entries []Entry, page int) *Builder {
	b := &Builder{entries: entries, now: time.Now()}
	b.page = max(min(page, b.TotalPages()-1), 0)

	return b
}

// TotalPages returns the number of pages, at least one.
func (b *Builder) TotalPages() int {
	return max((len(b.entries)+constants.LeaderboardPerPage-1)/constants.LeaderboardPerPage, 1)
}

// Page returns the zero-based page being built.
func (b *Builder) Page() int {
	return b.page
}

// Embed renders the current page.
func (b *Builder) Embed() discord.Embed {
	embed := discord.NewEmbedBuilder().
		SetTitle("Leaderboard").
		SetColor(constants.LeaderboardEmbedColor).
		SetTimestamp(b.now)

	if len(b.entries) == 0 {
		return embed.
			SetDescription("No users found in the spreadsheet.").
			SetFooter("Page 1/1", "").
			Build()
	}

	start := b.page * constants.LeaderboardPerPage
	end := min(start+constants.LeaderboardPerPage, len(b.entries))

	var content strings.Builder
	for i, entry := range b.entries[start:end] {
		fmt.Fprintf(&content, "%d) %s - **%d points**\n", start+i+1, entry.Name, entry.Points)
	}

	return embed.
		SetDescription(content.String()).
		SetFooter(fmt.Sprintf("Page %d/%d • Showing %d users", b.page+1, b.TotalPages(), len(b.entries)), "").
		Build()
}

// Build creates the initial leaderboard message.
func (b *Builder) Build() *discord.MessageCreateBuilder {
	builder := discord.NewMessageCreateBuilder().SetEmbeds(b.Embed())
	if b.TotalPages() > 1 {
		builder.AddActionRow(b.buttons()...)
	}

	return builder
}

// BuildUpdate creates the edit for a page change.
func (b *Builder) BuildUpdate() *discord.MessageUpdateBuilder {
	builder := discord.NewMessageUpdateBuilder().SetEmbeds(b.Embed())
	if b.TotalPages() > 1 {
		builder.AddActionRow(b.buttons()...)
	}

	return builder
}

// buttons carries the target page in each custom id so paging needs no state.
func (b *Builder) buttons() []discord.InteractiveComponent {
	return []discord.InteractiveComponent{
		discord.NewSecondaryButton(constants.LeaderboardPrevLabel+" Previous", PageCustomID(b.page-1)).
			WithDisabled(b.page == 0),
		discord.NewSecondaryButton("Next "+constants.LeaderboardNextLabel, PageCustomID(b.page+1)).
			WithDisabled(b.page >= b.TotalPages()-1),
	}
}

// PageCustomID encodes a page index into a button custom id.
func PageCustomID(page int) string {
	return constants.LeaderboardPageCustomID + constants.LeaderboardCustomIDSep + strconv.Itoa(page)
}

// ParsePageCustomID decodes a custom id created by PageCustomID.
func ParsePageCustomID(customID string) (int, bool) {
	rest, ok := strings.CutPrefix(customID, constants.LeaderboardPageCustomID+constants.LeaderboardCustomIDSep)
	if !ok {
		return 0, false
	}

	page, err := strconv.Atoi(rest)
	if err != nil || page < 0 {
		return 0, false
	}

	return page, true
}
