package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sourcegraph/conc/pool"
	"github.com/tf416/rosterbot/internal/bot/builder/reply"
	"github.com/tf416/rosterbot/internal/bot/constants"
	"github.com/tf416/rosterbot/internal/roster"
	"go.uber.org/zap"
)

// newThreadWindow separates freshly created threads from ones the bot only
// just learned about.
const newThreadWindow = 2 * time.Minute

// threadInfo is what the handlers need to know about a channel.
type threadInfo struct {
	Name     string
	OwnerID  snowflake.ID
	ParentID snowflake.ID
	IsThread bool
}

// threadCache remembers channel lookups so messages in known threads need no REST call.
type threadCache struct {
	mu      sync.RWMutex
	threads map[snowflake.ID]threadInfo
}

func newThreadCache() *threadCache {
	return &threadCache{threads: make(map[snowflake.ID]threadInfo)}
}

func (c *threadCache) get(id snowflake.ID) (threadInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, ok := c.threads[id]

	return info, ok
}

func (c *threadCache) set(id snowflake.ID, info threadInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.threads[id] = info
}

func infoFromThread(thread discord.GuildThread) threadInfo {
	info := threadInfo{Name: thread.Name(), OwnerID: thread.OwnerID, IsThread: true}
	if parent := thread.ParentID(); parent != nil {
		info.ParentID = *parent
	}

	return info
}

// channelInfo returns cached details of a channel, fetching them on a miss.
func (b *Bot) channelInfo(ctx context.Context, channelID snowflake.ID) (threadInfo, error) {
	if info, ok := b.threads.get(channelID); ok {
		return info, nil
	}

	channel, err := b.client.Rest().GetChannel(channelID, rest.WithCtx(ctx))
	if err != nil {
		return threadInfo{}, fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}

	var info threadInfo
	if thread, ok := channel.(discord.GuildThread); ok {
		info = infoFromThread(thread)
	}

	b.threads.set(channelID, info)

	return info, nil
}

// inForum reports whether info describes a thread of the activity forum.
func (b *Bot) inForum(info threadInfo) bool {
	return info.IsThread && info.ParentID == snowflake.ID(b.cfg.ForumChannelID)
}

// handleReady registers guild commands, joins the forum threads and redraws
// the status board, which is empty after a restart.
func (b *Bot) handleReady(event *events.Ready) {
	b.logger.Info("Gateway ready", zap.String("user", event.User.Username))

	b.run("ready", time.Minute, nil, func(ctx context.Context) {
		guildID := snowflake.ID(b.cfg.GuildID)

		registered, err := b.client.Rest().SetGuildCommands(b.client.ApplicationID(), guildID, commands(), rest.WithCtx(ctx))
		if err != nil {
			b.logger.Error("Failed to register guild commands", zap.Stringer("guildID", guildID), zap.Error(err))
		} else {
			b.logger.Info("Registered guild commands", zap.Int("count", len(registered)))
		}

		b.joinForumThreads(ctx, guildID)
		b.refreshBoard(ctx)
	})
}

// joinForumThreads joins every active forum thread so their messages are delivered.
func (b *Bot) joinForumThreads(ctx context.Context, guildID snowflake.ID) {
	active, err := b.client.Rest().GetActiveGuildThreads(guildID, rest.WithCtx(ctx))
	if err != nil {
		b.logger.Error("Failed to list active threads", zap.Error(err))
		return
	}

	p := pool.New().WithContext(ctx).WithMaxGoroutines(constants.ThreadJoinConcurrency)

	for _, thread := range active.Threads {
		info := infoFromThread(thread)
		b.threads.set(thread.ID(), info)

		if !b.inForum(info) {
			continue
		}

		p.Go(func(ctx context.Context) error {
			if err := b.client.Rest().JoinThread(thread.ID(), rest.WithCtx(ctx)); err != nil {
				b.logger.Warn("Failed to join thread", zap.String("thread", info.Name), zap.Error(err))
				return nil
			}

			b.logger.Debug("Joined thread", zap.String("thread", info.Name))

			return nil
		})
	}

	_ = p.Wait()
}

// handleThreadCreate registers the owner of a new forum thread on the roster
// and posts the log format guide.
func (b *Bot) handleThreadCreate(event *events.ThreadCreate) {
	info := infoFromThread(event.Thread)
	b.threads.set(event.ThreadID, info)

	if !b.inForum(info) || time.Since(event.ThreadID.Time()) > newThreadWindow {
		return
	}

	b.run("thread_create", time.Minute, nil, func(ctx context.Context) {
		if err := b.client.Rest().JoinThread(event.ThreadID, rest.WithCtx(ctx)); err != nil {
			b.logger.Warn("Failed to join new thread", zap.String("thread", info.Name), zap.Error(err))
		}

		b.ensureRosterEntry(ctx, info)

		msg := discord.NewMessageCreateBuilder().
			SetContent(reply.Welcome(info.Name)).
			Build()

		if _, err := b.client.Rest().CreateMessage(event.ThreadID, msg, rest.WithCtx(ctx)); err != nil {
			b.logger.Error("Failed to post welcome message", zap.String("thread", info.Name), zap.Error(err))
		}
	})
}

// ensureRosterEntry creates a roster row named after the thread when none exists.
func (b *Bot) ensureRosterEntry(ctx context.Context, info threadInfo) {
	_, err := b.roster.FindByUsername(ctx, info.Name)
	if err == nil {
		return
	}

	if !errors.Is(err, roster.ErrMemberNotFound) {
		b.logger.Error("Failed to check roster for new thread", zap.String("thread", info.Name), zap.Error(err))
		return
	}

	squadron := b.cfg.DefaultSquadron

	roleIDs, err := b.guild.MemberRoles(ctx, info.OwnerID)
	if err == nil {
		var names []string

		names, err = b.guild.RoleNames(ctx, roleIDs)
		if err == nil {
			squadron = squadronFor(names, b.cfg.SquadronRoles, b.cfg.DefaultSquadron)
		}
	}

	if err != nil {
		b.logger.Warn("Failed to read squadron roles, using default",
			zap.Stringer("ownerID", info.OwnerID),
			zap.Error(err))
	}

	_, err = b.roster.Create(ctx, roster.NewMember{
		Username:  info.Name,
		DiscordID: info.OwnerID.String(),
		Squadron:  squadron,
	})
	if err != nil && !errors.Is(err, roster.ErrMemberExists) {
		b.logger.Error("Failed to create roster entry", zap.String("username", info.Name), zap.Error(err))
	}
}

// squadronFor returns the squadron of the first role name found in squadrons.
func squadronFor(roleNames []string, squadrons map[string]string, fallback string) string {
	for _, name := range roleNames {
		if squadron, ok := squadrons[name]; ok {
			return squadron
		}
	}

	return fallback
}
