package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/tf416/rosterbot/internal/bot"
	"github.com/tf416/rosterbot/internal/bot/utils"
	"github.com/tf416/rosterbot/internal/setup"
	"github.com/tf416/rosterbot/internal/worker/core"
	"github.com/tf416/rosterbot/internal/worker/reset"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// BotLogDir specifies where bot log files are stored.
	BotLogDir = "logs/bot_logs"

	// ResetCommand runs the weekly activity reset once.
	ResetCommand = "reset"

	// CheckCommand verifies the roster connection and lists worker statuses.
	CheckCommand = "check"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "bot",
		Usage: "Start the roster activity bot",
		Commands: []*cli.Command{
			{
				Name:  ResetCommand,
				Usage: "Reset every weekly activity checkbox and exit",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return runReset(ctx)
				},
			},
			{
				Name:  CheckCommand,
				Usage: "Check the roster connection and show worker statuses",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return runCheck(ctx)
				},
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			return runBot(ctx)
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runBot starts the bot and the weekly reset worker until interrupted.
func runBot(ctx context.Context) error {
	app, err := setup.InitializeApp(ctx, "bot", BotLogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(ctx)

	discordBot, err := bot.New(app)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	if err := discordBot.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	// Weekly reset runs alongside the bot
	var wg sync.WaitGroup

	worker := reset.New(discordBot.Roster(), app.StatusClient,
		app.LogManager.GetWorkerLogger("reset_worker"), app.LogManager.GetInstanceID())

	wg.Add(1)

	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	log.Println("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

	<-ctx.Done()

	// Cleanly close down the Discord session
	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	discordBot.Close(closeCtx)
	wg.Wait()

	return nil
}

// runReset performs one weekly reset against the roster sheet.
func runReset(ctx context.Context) error {
	app, err := setup.InitializeApp(ctx, "reset", BotLogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(ctx)

	worker := reset.New(app.Roster, app.StatusClient,
		app.LogManager.GetWorkerLogger("reset_worker"), app.LogManager.GetInstanceID())

	count, err := worker.Run(ctx)
	if err != nil {
		return err
	}

	log.Printf("Reset %d activity checkboxes", count)

	return nil
}

// runCheck prints the roster size and the last known worker statuses.
func runCheck(ctx context.Context) error {
	app, err := setup.InitializeApp(ctx, "check", BotLogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(ctx)

	members, err := app.Roster.Members(ctx)
	if err != nil {
		return err
	}

	log.Printf("Roster has %d members", len(members))

	statuses, err := core.NewMonitor(app.StatusClient, app.Logger).GetAllStatuses(ctx)
	if err != nil {
		app.Logger.Warn("Failed to read worker statuses", zap.Error(err))
		return nil
	}

	now := time.Now()
	for _, s := range statuses {
		state := "healthy"
		if !s.IsHealthy {
			state = "unhealthy"
		}

		if s.Stale(now) {
			state = "stale"
		}

		log.Printf("%s/%s: %s, %s (%d%%), seen %s, next run %s",
			s.WorkerType, s.WorkerID, state, s.CurrentTask, s.Progress,
			utils.FormatTimeAgo(s.LastSeen), s.NextRun.Format(time.RFC1123))
	}

	return nil
}
