package bot

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/tf416/rosterbot/internal/bot/builder/leaderboard"
	"github.com/tf416/rosterbot/internal/bot/builder/reply"
	"github.com/tf416/rosterbot/internal/bot/builder/status"
	"github.com/tf416/rosterbot/internal/bot/constants"
	"github.com/tf416/rosterbot/internal/nickname"
	"github.com/tf416/rosterbot/internal/promotion"
	"github.com/tf416/rosterbot/internal/roster"
	"github.com/tf416/rosterbot/internal/shift"
	"go.uber.org/zap"
)

// staffCommands need Manage Roles or a configured staff role.
var staffCommands = []string{
	constants.AddCommandName,
	constants.RemoveCommandName,
	constants.ResetCommandName,
	constants.LOACommandName,
}

// commands returns the guild command definitions.
func commands() []discord.ApplicationCommandCreate {
	minAmount := 1

	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        constants.LeaderboardCommandName,
			Description: "Show the points leaderboard",
		},
		discord.SlashCommandCreate{
			Name:        constants.PointsCommandName,
			Description: "Show your points or another member's",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        constants.OptionUser,
					Description: "Member to look up",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.AddCommandName,
			Description: "Add points to a member",
			Options:     pointsOptions(&minAmount, "Points to add"),
		},
		discord.SlashCommandCreate{
			Name:        constants.RemoveCommandName,
			Description: "Remove points from a member",
			Options:     pointsOptions(&minAmount, "Points to remove"),
		},
		discord.SlashCommandCreate{
			Name:        constants.ResetCommandName,
			Description: "Reset every weekly activity checkbox",
		},
		discord.SlashCommandCreate{
			Name:        constants.LOACommandName,
			Description: "Take a member off leave",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        constants.OptionUser,
					Description: "Member returning from leave",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.ClockInCommandName,
			Description: "Start a duty session",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        constants.OptionTimezone,
					Description: "Your timezone, e.g. EST or GMT+2",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.ClockOutCommandName,
			Description: "End your duty session",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        constants.OptionNote,
					Description: "Note added to your log",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.TimeCommandName,
			Description: "Show how long you have been clocked in",
		},
		discord.SlashCommandCreate{
			Name:        constants.DeployCommandName,
			Description: "Announce a deployment",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        constants.OptionNote,
					Description: "Deployment details",
					Required:    true,
				},
			},
		},
	}
}

func pointsOptions(minAmount *int, description string) []discord.ApplicationCommandOption {
	return []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        constants.OptionAmount,
			Description: description,
			Required:    true,
			MinValue:    minAmount,
		},
		discord.ApplicationCommandOptionUser{
			Name:        constants.OptionMember,
			Description: "Target member",
			Required:    true,
		},
	}
}

// handleApplicationCommandInteraction checks staff permissions up front, then
// defers the response and runs the command on its own goroutine.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	name := data.CommandName()

	if slices.Contains(staffCommands, name) && !isStaff(event.Member(), b.cfg.StaffRoleIDs) {
		err := event.CreateMessage(discord.NewMessageCreateBuilder().
			SetContent(reply.NoPermission).
			SetEphemeral(true).
			Build())
		if err != nil {
			b.logger.Error("Failed to send permission error", zap.Error(err))
		}

		return
	}

	onPanic := func() { b.respond(event, text(reply.Generic)) }

	b.run("command:"+name, constants.CommandTimeout, onPanic, func(ctx context.Context) {
		// Defer response to prevent Discord timeout while processing
		if err := event.DeferCreateMessage(false); err != nil {
			b.logger.Error("Failed to defer create message", zap.Error(err))
			return
		}

		var update discord.MessageUpdate

		switch name {
		case constants.LeaderboardCommandName:
			update = b.leaderboardCommand(ctx)
		case constants.PointsCommandName:
			update = b.pointsCommand(ctx, event)
		case constants.AddCommandName:
			update = b.adjustCommand(ctx, event, 1)
		case constants.RemoveCommandName:
			update = b.adjustCommand(ctx, event, -1)
		case constants.ResetCommandName:
			update = b.resetCommand(ctx)
		case constants.LOACommandName:
			update = b.loaCommand(ctx, event)
		case constants.ClockInCommandName:
			update = b.clockInCommand(ctx, event)
		case constants.ClockOutCommandName:
			update = b.clockOutCommand(ctx, event)
		case constants.TimeCommandName:
			update = b.timeCommand(event)
		case constants.DeployCommandName:
			update = b.deployCommand(ctx, event)
		default:
			update = text("This command is not available.")
		}

		b.respond(event, update)
	})
}

// handleComponentInteraction pages the leaderboard. The page to show is
// carried in the button's custom id.
func (b *Bot) handleComponentInteraction(event *events.ComponentInteractionCreate) {
	page, ok := leaderboard.ParsePageCustomID(event.Data.CustomID())
	if !ok {
		return
	}

	b.run("leaderboard_page", constants.CommandTimeout, nil, func(ctx context.Context) {
		if err := event.DeferUpdateMessage(); err != nil {
			b.logger.Error("Failed to defer update message", zap.Error(err))
			return
		}

		members, err := b.roster.Members(ctx)
		if err != nil {
			b.logger.Error("Failed to load roster for leaderboard", zap.Error(err))
			return
		}

		update := leaderboard.NewBuilder(leaderboard.Entries(members), page).BuildUpdate().Build()
		if _, err := event.Client().Rest().UpdateInteractionResponse(event.ApplicationID(), event.Token(), update); err != nil {
			b.logger.Error("Failed to update leaderboard page", zap.Error(err))
		}
	})
}

func (b *Bot) leaderboardCommand(ctx context.Context) discord.MessageUpdate {
	members, err := b.roster.Members(ctx)
	if err != nil {
		b.logger.Error("Failed to load roster for leaderboard", zap.Error(err))
		return text(reply.Generic)
	}

	return leaderboard.NewBuilder(leaderboard.Entries(members), 0).BuildUpdate().Build()
}

func (b *Bot) pointsCommand(ctx context.Context, event *events.ApplicationCommandInteractionCreate) discord.MessageUpdate {
	data := event.SlashCommandInteractionData()
	user, display := caller(event)
	self := true

	if target, ok := data.OptUser(constants.OptionUser); ok && target.ID != user.ID {
		user, display, self = target, optionDisplayName(data, constants.OptionUser, target), false
	}

	member, err := b.findMember(ctx, user.ID, display)
	if err != nil {
		return b.lookupFailed(err, display)
	}

	return text(reply.Points(member.Username, member.Points, self))
}

// adjustCommand handles /add (sign 1) and /remove (sign -1).
func (b *Bot) adjustCommand(ctx context.Context, event *events.ApplicationCommandInteractionCreate, sign int) discord.MessageUpdate {
	data := event.SlashCommandInteractionData()
	amount := data.Int(constants.OptionAmount)
	target := data.User(constants.OptionMember)
	display := optionDisplayName(data, constants.OptionMember, target)

	member, err := b.findMember(ctx, target.ID, display)
	if err != nil {
		return b.lookupFailed(err, display)
	}

	delta := sign * amount

	outcome, err := b.engine.Adjust(ctx, member, delta)
	if err != nil {
		b.logger.Error("Failed to adjust points",
			zap.String("username", member.Username),
			zap.Int("delta", delta),
			zap.Error(err))

		return text(reply.Generic)
	}

	b.announcePromotions(ctx, member, outcome)

	return text(reply.PointsAdjusted(outcome, delta, display, member.Username, b.points.ApplicationFormURL))
}

func (b *Bot) resetCommand(ctx context.Context) discord.MessageUpdate {
	count, err := b.roster.ResetActivity(ctx)
	if err != nil {
		b.logger.Error("Failed to reset activity", zap.Error(err))
		return text(reply.Generic)
	}

	b.logger.Info("Weekly activity reset from command", zap.Int("rows", count))

	return text(reply.ResetDone)
}

func (b *Bot) loaCommand(ctx context.Context, event *events.ApplicationCommandInteractionCreate) discord.MessageUpdate {
	data := event.SlashCommandInteractionData()
	target := data.User(constants.OptionUser)
	display := optionDisplayName(data, constants.OptionUser, target)

	if _, err := b.loa.Remove(ctx, target.ID, display); err != nil {
		if errors.Is(err, roster.ErrMemberNotFound) {
			return text(reply.MemberNotFound(display))
		}

		b.logger.Error("Failed to remove LOA", zap.Stringer("userID", target.ID), zap.Error(err))

		return text(reply.LOAFailed)
	}

	return text(reply.LOARemoved)
}

func (b *Bot) clockInCommand(ctx context.Context, event *events.ApplicationCommandInteractionCreate) discord.MessageUpdate {
	data := event.SlashCommandInteractionData()
	name := data.String(constants.OptionTimezone)

	zone, err := b.zones.Resolve(name)
	if err != nil {
		return text(reply.UnknownTimezone(name))
	}

	user, display := caller(event)
	username, rank := b.dutyIdentity(ctx, event, user.ID, display)

	session, err := b.tracker.ClockIn(user.ID, username, rank, zone)
	if err != nil {
		return text(reply.AlreadyClockedIn)
	}

	b.refreshBoard(ctx)

	return text(reply.ClockedIn(session))
}

func (b *Bot) clockOutCommand(ctx context.Context, event *events.ApplicationCommandInteractionCreate) discord.MessageUpdate {
	data := event.SlashCommandInteractionData()
	user, _ := caller(event)

	proof, err := b.tracker.ClockOut(user.ID, data.String(constants.OptionNote))
	if err != nil {
		return text(reply.NotClockedIn)
	}

	b.refreshBoard(ctx)

	return text(reply.ClockedOut(proof, b.proofWindow()))
}

func (b *Bot) timeCommand(event *events.ApplicationCommandInteractionCreate) discord.MessageUpdate {
	user, _ := caller(event)

	session, ok := b.tracker.Session(user.ID)
	if !ok {
		return text(reply.NotClockedIn)
	}

	elapsed, _ := b.tracker.Elapsed(user.ID)

	return text(reply.Elapsed(session, shift.FormatElapsed(elapsed)))
}

func (b *Bot) deployCommand(ctx context.Context, event *events.ApplicationCommandInteractionCreate) discord.MessageUpdate {
	data := event.SlashCommandInteractionData()
	user, _ := caller(event)

	session, ok := b.tracker.Session(user.ID)
	if !ok {
		return text(reply.NotClockedIn)
	}

	channelID := snowflake.ID(b.cfg.DeploymentChannelID)
	notice := status.NewDeployBuilder(session, data.String(constants.OptionNote), b.tracker.Active(), time.Now()).Build()

	if _, err := b.client.Rest().CreateMessage(channelID, notice.Build(), rest.WithCtx(ctx)); err != nil {
		b.logger.Error("Failed to post deployment", zap.Stringer("channelID", channelID), zap.Error(err))
		return text(reply.Generic)
	}

	return text(reply.Deployed(channelID.String()))
}

// dutyIdentity returns the name and rank shown on the status board. Members
// missing from the roster fall back to their display name and rank role.
func (b *Bot) dutyIdentity(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, userID snowflake.ID, display string,
) (string, roster.Rank) {
	member, err := b.findMember(ctx, userID, display)
	if err == nil {
		return member.Username, member.Rank
	}

	var roleIDs []snowflake.ID
	if m := event.Member(); m != nil {
		roleIDs = m.RoleIDs
	}

	return nickname.Username(display), b.syncer.RankFromRoles(roleIDs)
}

// findMember resolves a Discord user to a roster member by id, then by the
// display name with its rank prefix removed.
func (b *Bot) findMember(ctx context.Context, userID snowflake.ID, display string) (*roster.Member, error) {
	member, err := b.roster.FindByDiscordID(ctx, userID.String())
	if err == nil || !errors.Is(err, roster.ErrMemberNotFound) {
		return member, err
	}

	return b.roster.FindByUsername(ctx, nickname.Username(display))
}

func (b *Bot) lookupFailed(err error, display string) discord.MessageUpdate {
	if errors.Is(err, roster.ErrMemberNotFound) {
		b.logger.Debug("Member not on roster", zap.String("name", display))
		return text(reply.MemberNotFound(display))
	}

	b.logger.Error("Failed to look up member", zap.String("name", display), zap.Error(err))

	return text(reply.Generic)
}

// announcePromotions posts one notice per rank reached to the notifier channel.
func (b *Bot) announcePromotions(ctx context.Context, member *roster.Member, outcome *promotion.Outcome) {
	if outcome == nil || b.cfg.NotifierChannelID == 0 {
		return
	}

	channelID := snowflake.ID(b.cfg.NotifierChannelID)
	for _, rank := range outcome.Promotions {
		msg := discord.NewMessageCreateBuilder().
			SetContent(reply.PromotionNotice(member.DiscordID, member.Username, rank)).
			Build()

		if _, err := b.client.Rest().CreateMessage(channelID, msg, rest.WithCtx(ctx)); err != nil {
			b.logger.Warn("Failed to announce promotion",
				zap.String("username", member.Username),
				zap.Stringer("rank", rank),
				zap.Error(err))
		}
	}
}

func (b *Bot) respond(event *events.ApplicationCommandInteractionCreate, update discord.MessageUpdate) {
	if _, err := event.Client().Rest().UpdateInteractionResponse(event.ApplicationID(), event.Token(), update); err != nil {
		b.logger.Error("Failed to update interaction response", zap.Error(err))
	}
}

func text(content string) discord.MessageUpdate {
	return discord.NewMessageUpdateBuilder().SetContent(content).Build()
}

// isStaff reports whether a member may use staff commands.
func isStaff(member *discord.ResolvedMember, staffRoles []uint64) bool {
	if member == nil {
		return false
	}

	if member.Permissions.Has(discord.PermissionManageRoles) {
		return true
	}

	for _, role := range member.RoleIDs {
		if slices.Contains(staffRoles, uint64(role)) {
			return true
		}
	}

	return false
}

// caller returns the invoking user and their display name.
func caller(event *events.ApplicationCommandInteractionCreate) (discord.User, string) {
	user := event.User()

	var member *discord.Member
	if m := event.Member(); m != nil {
		member = &m.Member
	}

	return user, displayName(member, user)
}

func optionDisplayName(data discord.SlashCommandInteractionData, option string, user discord.User) string {
	if m, ok := data.OptMember(option); ok {
		return displayName(&m.Member, user)
	}

	return displayName(nil, user)
}

// displayName mirrors what Discord shows: nickname, then global name, then username.
func displayName(member *discord.Member, user discord.User) string {
	if member != nil && member.Nick != nil && *member.Nick != "" {
		return *member.Nick
	}

	if user.GlobalName != nil && *user.GlobalName != "" {
		return *user.GlobalName
	}

	return user.Username
}
