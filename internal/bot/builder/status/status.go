// Package status renders the on-duty status board and deployment notices.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/tf416/rosterbot/internal/bot/constants"
	"github.com/tf416/rosterbot/internal/bot/utils"
	"github.com/tf416/rosterbot/internal/nickname"
	"github.com/tf416/rosterbot/internal/roster"
	"github.com/tf416/rosterbot/internal/shift"
)

// CommanderMinRank is the lowest rank that can lead the board.
const CommanderMinRank = roster.E5

// Roles splits sessions, already ordered highest rank first, into the
// commander (if any) and the operatives.
func Roles(sessions []shift.Session) (*shift.Session, []shift.Session) {
	if len(sessions) > 0 && sessions[0].Rank >= CommanderMinRank {
		return &sessions[0], sessions[1:]
	}

	return nil, sessions
}

// Builder creates the status board message.
type Builder struct {
	sessions []shift.Session
	now      time.Time
}

// NewBuilder creates a status board builder for the given active sessions.
func NewBuilder(sessions []shift.Session, now time.Time) *Builder {
	return &Builder{sessions: sessions, now: now}
}

// Embed renders the board.
func (b *Builder) Embed() discord.Embed {
	embed := discord.NewEmbedBuilder().
		SetTitle("Session Status").
		SetTimestamp(b.now)

	if len(b.sessions) == 0 {
		return embed.
			SetColor(constants.StatusBoardIdleEmbedColor).
			SetDescription("No one is currently on duty.").
			Build()
	}

	commander, operatives := Roles(b.sessions)

	embed.SetColor(constants.StatusBoardEmbedColor)

	if commander != nil {
		embed.AddField("Commander", b.line(*commander), false)
	}

	if len(operatives) > 0 {
		lines := make([]string, len(operatives))
		for i, s := range operatives {
			lines[i] = b.line(s)
		}

		embed.AddField(fmt.Sprintf("Operatives (%d)", len(operatives)), utils.TruncateString(strings.Join(lines, "\n"), 1024), false)
	}

	return embed.
		SetFooter(fmt.Sprintf("%d on duty", len(b.sessions)), "").
		Build()
}

// Build creates a new board message.
func (b *Builder) Build() *discord.MessageCreateBuilder {
	return discord.NewMessageCreateBuilder().SetEmbeds(b.Embed())
}

// BuildUpdate creates the edit of an existing board message.
func (b *Builder) BuildUpdate() *discord.MessageUpdateBuilder {
	return discord.NewMessageUpdateBuilder().SetEmbeds(b.Embed())
}

func (b *Builder) line(s shift.Session) string {
	return fmt.Sprintf("%s • %s (%s) • since %s",
		displayName(s),
		shift.FormatElapsed(b.now.Sub(s.Start)),
		s.Zone.Name,
		utils.DiscordTimestamp(s.Start, "t"))
}

// DeployBuilder creates a deployment notice.
type DeployBuilder struct {
	caller   shift.Session
	note     string
	sessions []shift.Session
	now      time.Time
}

// NewDeployBuilder creates a deployment notice from caller with the current roster on duty.
func NewDeployBuilder(caller shift.Session, note string, sessions []shift.Session, now time.Time) *DeployBuilder {
	return &DeployBuilder{caller: caller, note: note, sessions: sessions, now: now}
}

// Build creates the notice message.
func (b *DeployBuilder) Build() *discord.MessageCreateBuilder {
	ids := make([]snowflake.ID, len(b.sessions))
	for i, s := range b.sessions {
		ids[i] = s.UserID
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Deployment").
		SetColor(constants.DeployEmbedColor).
		SetDescription(utils.TruncateString(b.note, 4000)).
		AddField("Deployed by", fmt.Sprintf("<@%d> (%s)", b.caller.UserID, displayName(b.caller)), false).
		AddField(fmt.Sprintf("Online (%d)", len(b.sessions)), utils.TruncateString(utils.FormatMentions(ids), 1024), false).
		SetTimestamp(b.now).
		Build()

	return discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		SetAllowedMentions(&discord.AllowedMentions{})
}

func displayName(s shift.Session) string {
	return nickname.Compose(nickname.Prefix(s.Rank), "", s.Username)
}
