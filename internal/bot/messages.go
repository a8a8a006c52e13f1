package bot

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/tf416/rosterbot/internal/activity"
	"github.com/tf416/rosterbot/internal/bot/builder/reply"
	"go.uber.org/zap"
)

// messageTimeout bounds a message handler, which may download proof images.
const messageTimeout = 2 * time.Minute

// messenger is the part of the REST client that posts and removes messages.
type messenger interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	DeleteMessage(channelID snowflake.ID, messageID snowflake.ID, opts ...rest.RequestOpt) error
}

// handleMessageCreate intercepts proof screenshots and checks activity logs
// posted in forum threads. Logs that pass are left for a moderator's ✅.
func (b *Bot) handleMessageCreate(event *events.GuildMessageCreate) {
	msg := event.Message
	if msg.Author.Bot {
		return
	}

	images := imageAttachments(msg.Attachments)
	proofCandidate := len(images) > 0 && b.tracker.HasPendingProof(msg.Author.ID)
	isLog := activity.HasTotalTime(msg.Content)

	if !proofCandidate && !isLog {
		return
	}

	b.run("message", messageTimeout, nil, func(ctx context.Context) {
		info, err := b.channelInfo(ctx, msg.ChannelID)
		if err != nil {
			b.logger.Error("Failed to resolve message channel", zap.Error(err))
			return
		}

		if !b.inForum(info) {
			return
		}

		if proofCandidate && info.OwnerID == msg.Author.ID && b.proofs.Handle(ctx, msg, images) {
			return
		}

		if isLog {
			b.validateLog(ctx, msg, len(images))
		}
	})
}

// validateLog replies to a malformed log with what needs fixing.
func (b *Bot) validateLog(ctx context.Context, msg discord.Message, images int) {
	var content string

	switch err := activity.Validate(msg.Content, images); {
	case err == nil:
		return
	case errors.Is(err, activity.ErrMissingProof):
		content = reply.MissingProof
	case errors.Is(err, activity.ErrMinutesOutOfRange):
		content = reply.BadMinutes
	default:
		content = reply.BadTotalTime
	}

	b.logger.Debug("Rejected activity log",
		zap.Stringer("messageID", msg.ID),
		zap.Stringer("authorID", msg.Author.ID))

	b.replyTo(ctx, msg, content)
}

// replyTo answers a message in its channel.
func (b *Bot) replyTo(ctx context.Context, msg discord.Message, content string) {
	replyTo(ctx, b.client.Rest(), msg, content, b.logger)
}

func replyTo(ctx context.Context, m messenger, msg discord.Message, content string, logger *zap.Logger) {
	create := discord.NewMessageCreateBuilder().
		SetContent(content).
		SetMessageReferenceByID(msg.ID).
		Build()

	if _, err := m.CreateMessage(msg.ChannelID, create, rest.WithCtx(ctx)); err != nil {
		logger.Error("Failed to reply to message",
			zap.Stringer("messageID", msg.ID),
			zap.Error(err))
	}
}
