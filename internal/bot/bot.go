package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"github.com/tf416/rosterbot/internal/activity"
	"github.com/tf416/rosterbot/internal/bot/guild"
	"github.com/tf416/rosterbot/internal/bot/statusboard"
	"github.com/tf416/rosterbot/internal/loa"
	"github.com/tf416/rosterbot/internal/promotion"
	"github.com/tf416/rosterbot/internal/redis"
	"github.com/tf416/rosterbot/internal/rolesync"
	"github.com/tf416/rosterbot/internal/roster"
	"github.com/tf416/rosterbot/internal/setup"
	"github.com/tf416/rosterbot/internal/setup/config"
	"github.com/tf416/rosterbot/internal/shift"
	"go.uber.org/zap"
)

// approvalTTL is how long an approved message id is remembered.
const approvalTTL = 30 * 24 * time.Hour

// Bot wires Discord events to the roster workflows.
type Bot struct {
	cfg      *config.Discord
	points   *config.Points
	client   bot.Client
	guild    *guild.Guild
	roster   *roster.Roster
	syncer   *rolesync.Syncer
	engine   *promotion.Engine
	approver *activity.Approver
	loa      *loa.Service
	tracker  *shift.Tracker
	zones    *shift.Zones
	board    *statusboard.Board
	threads  *threadCache
	proofs   *proofRelay
	proofTTL time.Duration
	logger   *zap.Logger
}

// New builds every workflow on top of the app's roster and Redis clients and
// configures the Discord client with the gateway intents they need.
func New(app *setup.App) (*Bot, error) {
	cfg := app.Config.Bot
	logger := app.Logger.Named("bot")

	ledgerClient, err := app.RedisManager.GetClient(redis.LedgerDBIndex)
	if err != nil {
		return nil, err
	}

	boardClient, err := app.RedisManager.GetClient(redis.BoardDBIndex)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		cfg:      &cfg.Discord,
		points:   &cfg.Points,
		roster:   app.Roster,
		zones:    shift.NewZones(app.Timezones),
		threads:  newThreadCache(),
		proofTTL: time.Duration(cfg.Sessions.ProofTimeout) * time.Second,
		logger:   logger,
	}

	// Configure Discord client with required gateway intents and event handlers
	client, err := disgo.New(cfg.Discord.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMembers,
				gateway.IntentGuildMessages,
				gateway.IntentGuildMessageReactions,
				gateway.IntentMessageContent,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnReady:                         b.handleReady,
			OnThreadCreate:                  b.handleThreadCreate,
			OnGuildMessageCreate:            b.handleMessageCreate,
			OnGuildMessageReactionAdd:       b.handleReactionAdd,
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
			OnComponentInteraction:          b.handleComponentInteraction,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client
	b.guild = guild.New(client.Rest(), snowflake.ID(cfg.Discord.GuildID))
	b.syncer = rolesync.NewSyncer(b.guild, app.Roster, cfg.Discord.RankRoles, cfg.Discord.LOARoleID, logger)

	table := promotion.DefaultTable().WithThresholds(cfg.Points.Thresholds)
	b.engine = promotion.NewEngine(app.Roster, b.syncer, table, cfg.Points.PerHour, logger)
	b.approver = activity.NewApprover(app.Roster, b.engine, activity.NewLedger(ledgerClient, approvalTTL),
		cfg.Points.MinHours, logger)
	b.loa = loa.NewService(app.Roster, b.syncer, cfg.Discord.LOAIgnoredRoleIDs, logger)

	b.tracker = shift.NewTracker(b.proofTTL, logger)
	b.proofs = newProofRelay(b.tracker, client.Rest(), app.HTTPClient, logger)
	b.board = statusboard.New(client.Rest(), boardClient, cfg.Discord.StatusChannelID, b.tracker.Active, logger)

	return b, nil
}

// Start opens the gateway connection. Commands are registered once the
// gateway reports ready.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")
	return b.client.OpenGateway(ctx)
}

// Close stops pending proof timers and shuts down the gateway connection.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.tracker.Close()
	b.client.Close(ctx)
}

// Roster returns the roster the bot writes to.
func (b *Bot) Roster() *roster.Roster {
	return b.roster
}

// run executes fn on its own goroutine with a bounded context. A panic is
// logged and handed to onPanic so the caller can still answer the user.
func (b *Bot) run(name string, timeout time.Duration, onPanic func(), fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in event handler", zap.String("handler", name), zap.Any("panic", r))

				if onPanic != nil {
					onPanic()
				}
			}

			b.logger.Debug("Event handled",
				zap.String("handler", name),
				zap.Duration("duration", time.Since(start)))
		}()

		fn(ctx)
	}()
}

// refreshBoard redraws the status board, logging failures.
func (b *Bot) refreshBoard(ctx context.Context) {
	if err := b.board.Refresh(ctx); err != nil {
		b.logger.Error("Failed to refresh status board", zap.Error(err))
	}
}
