// Package statusboard keeps a single on-duty message up to date.
package statusboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/rueidis"
	"github.com/tf416/rosterbot/internal/bot/builder/status"
	"github.com/tf416/rosterbot/internal/bot/constants"
	"github.com/tf416/rosterbot/internal/shift"
	"go.uber.org/zap"
)

// Messenger is the subset of the Discord REST client the board needs.
type Messenger interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	UpdateMessage(channelID, messageID snowflake.ID, messageUpdate discord.MessageUpdate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// Sessions returns the sessions to show, highest rank first.
type Sessions func() []shift.Session

// Board edits one message in the status channel. The message id is kept in
// Redis so restarts keep editing the same message.
type Board struct {
	messenger Messenger
	client    rueidis.Client
	channelID snowflake.ID
	sessions  Sessions
	logger    *zap.Logger
	now       func() time.Time
	mu        sync.Mutex
}

// New creates a status board. A zero channel disables it.
func New(messenger Messenger, client rueidis.Client, channelID uint64, sessions Sessions, logger *zap.Logger) *Board {
	return &Board{
		messenger: messenger,
		client:    client,
		channelID: snowflake.ID(channelID),
		sessions:  sessions,
		logger:    logger.Named("statusboard"),
		now:       time.Now,
	}
}

// Refresh redraws the board from the current sessions.
func (b *Board) Refresh(ctx context.Context) error {
	if b.channelID == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	builder := status.NewBuilder(b.sessions(), b.now())

	messageID, err := b.messageID(ctx)
	if err != nil {
		b.logger.Warn("Failed to read status board message id", zap.Error(err))
	}

	if messageID != 0 {
		_, err := b.messenger.UpdateMessage(b.channelID, messageID, builder.BuildUpdate().Build(), rest.WithCtx(ctx))
		if err == nil {
			return nil
		}

		b.logger.Warn("Failed to edit status board, posting a new one",
			zap.Stringer("messageID", messageID),
			zap.Error(err))
	}

	msg, err := b.messenger.CreateMessage(b.channelID, builder.Build().Build(), rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to post status board: %w", err)
	}

	err = b.client.Do(ctx, b.client.B().Set().Key(constants.StatusBoardMessageKey).Value(msg.ID.String()).Build()).Error()
	if err != nil {
		b.logger.Warn("Failed to store status board message id", zap.Error(err))
	}

	b.logger.Info("Posted status board", zap.Stringer("messageID", msg.ID))

	return nil
}

func (b *Board) messageID(ctx context.Context) (snowflake.ID, error) {
	value, err := b.client.Do(ctx, b.client.B().Get().Key(constants.StatusBoardMessageKey).Build()).ToString()
	if rueidis.IsRedisNil(err) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return snowflake.Parse(value)
}
