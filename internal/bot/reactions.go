package bot

import (
	"context"
	"errors"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/tf416/rosterbot/internal/activity"
	"github.com/tf416/rosterbot/internal/bot/builder/reply"
	"github.com/tf416/rosterbot/internal/bot/constants"
	"github.com/tf416/rosterbot/internal/loa"
	"github.com/tf416/rosterbot/internal/roster"
	"go.uber.org/zap"
)

// handleReactionAdd treats a ✅ as approval: of an activity log in a forum
// thread, or of a leave request in the LOA channel.
func (b *Bot) handleReactionAdd(event *events.GuildMessageReactionAdd) {
	if event.Emoji.Name == nil || *event.Emoji.Name != constants.ApprovalEmoji {
		return
	}

	if event.Member.User.Bot || event.UserID == b.client.ID() {
		return
	}

	b.run("reaction", constants.CommandTimeout, nil, func(ctx context.Context) {
		msg, err := b.client.Rest().GetMessage(event.ChannelID, event.MessageID, rest.WithCtx(ctx))
		if err != nil {
			b.logger.Error("Failed to fetch reacted message", zap.Stringer("messageID", event.MessageID), zap.Error(err))
			return
		}

		if uint64(event.ChannelID) == b.cfg.LOAChannelID {
			if loa.IsRequest(msg.Content) {
				b.approveLeave(ctx, *msg)
			}

			return
		}

		if !activity.HasTotalTime(msg.Content) {
			return
		}

		info, err := b.channelInfo(ctx, event.ChannelID)
		if err != nil {
			b.logger.Error("Failed to resolve reaction channel", zap.Error(err))
			return
		}

		if b.inForum(info) {
			b.approveLog(ctx, *msg, info)
		}
	})
}

// approveLog awards the points of an approved activity log.
func (b *Bot) approveLog(ctx context.Context, msg discord.Message, info threadInfo) {
	result, err := b.approver.Approve(ctx, activity.Request{
		MessageID:  msg.ID.String(),
		Content:    msg.Content,
		ThreadName: info.Name,
		AuthorID:   msg.Author.ID.String(),
	})

	switch {
	case err == nil:
	case errors.Is(err, activity.ErrTotalTimeNotFound):
		b.replyTo(ctx, msg, reply.BadTotalTime)
		return
	case errors.Is(err, activity.ErrMinutesOutOfRange):
		b.replyTo(ctx, msg, reply.BadMinutes)
		return
	case errors.Is(err, roster.ErrMemberNotFound):
		b.logger.Warn("Approved log has no roster owner",
			zap.String("thread", info.Name),
			zap.Stringer("authorID", msg.Author.ID))
		b.replyTo(ctx, msg, reply.NotOnRoster)

		return
	default:
		b.logger.Error("Failed to approve activity log",
			zap.Stringer("messageID", msg.ID),
			zap.String("thread", info.Name),
			zap.Error(err))
		b.replyTo(ctx, msg, reply.Generic)

		return
	}

	if result.Duplicate {
		return
	}

	if result.BelowMinimum {
		b.replyTo(ctx, msg, reply.BelowMinimum)
		return
	}

	b.announcePromotions(ctx, result.Member, result.Outcome)
	b.replyTo(ctx, msg, reply.ActivityLogged(result, b.points.ApplicationFormURL))
}

// approveLeave puts the author of an approved leave request on LOA.
func (b *Bot) approveLeave(ctx context.Context, msg discord.Message) {
	member, err := b.guild.Member(ctx, msg.Author.ID)
	if err != nil {
		b.logger.Error("Failed to fetch leave requester", zap.Stringer("userID", msg.Author.ID), zap.Error(err))
		return
	}

	_, err = b.loa.Approve(ctx, msg.Author.ID, member.RoleIDs, msg.Content)

	switch {
	case err == nil:
	case errors.Is(err, loa.ErrExempt):
		b.logger.Info("Skipped leave for exempt member", zap.Stringer("userID", msg.Author.ID))
	case errors.Is(err, roster.ErrMemberNotFound):
		b.replyTo(ctx, msg, reply.NotOnRoster)
	default:
		b.logger.Error("Failed to approve leave", zap.Stringer("userID", msg.Author.ID), zap.Error(err))
		b.replyTo(ctx, msg, reply.LOAFailed)
	}
}
