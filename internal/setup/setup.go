package setup

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jaxron/axonet/pkg/client"
	"github.com/redis/rueidis"
	"github.com/tf416/rosterbot/internal/redis"
	"github.com/tf416/rosterbot/internal/roster"
	httpclient "github.com/tf416/rosterbot/internal/setup/client"
	"github.com/tf416/rosterbot/internal/setup/config"
	"github.com/tf416/rosterbot/internal/setup/telemetry"
	"github.com/tf416/rosterbot/pkg/utils"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config         // Application configuration
	ConfigDir    string                 // Directory the config was loaded from
	Logger       *zap.Logger            // Main application logger
	LogManager   *telemetry.Manager     // Log management system
	RedisManager *redis.Manager         // Redis connection manager
	StatusClient rueidis.Client         // Redis client for worker status reporting
	Timezones    []config.TimezoneEntry // Timezone table for clock-in
	Roster       *roster.Roster         // Roster spreadsheet access
	HTTPClient   *client.Client         // HTTP client for attachment downloads
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, component, logDir string) (*App, error) {
	// Load app configuration
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(component, logDir, &cfg.Common.Debug)

	logger, err := logManager.GetLogger()
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", zap.String("dir", configDir))

	// Redis manager provides connection pools for various subsystems
	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	statusClient, err := redisManager.GetClient(redis.WorkerStatusDBIndex)
	if err != nil {
		redisManager.Close()
		return nil, err
	}

	rosterClient, err := redisManager.GetClient(redis.RosterDBIndex)
	if err != nil {
		redisManager.Close()
		return nil, err
	}

	// Roster is read through the sheet with a short-lived cache in front
	layout := roster.NewLayout(cfg.Common.Sheets.Layout)

	sheet, err := roster.NewGoogleSheet(ctx,
		cfg.Common.Sheets.CredentialsFile,
		cfg.Common.Sheets.SpreadsheetID,
		cfg.Common.Sheets.SheetName,
		layout,
		logger,
	)
	if err != nil {
		redisManager.Close()
		return nil, err
	}

	cache := roster.NewCache(rosterClient,
		time.Duration(cfg.Bot.Cache.MemberTTL)*time.Second,
		time.Duration(cfg.Bot.Cache.RosterTTL)*time.Second,
		logger,
	)
	rosterService := roster.New(sheet, layout, cache, logger)

	if err := probeSheet(ctx, sheet, logger); err != nil {
		redisManager.Close()
		return nil, err
	}

	// Missing timezone file falls back to the built-in table
	timezones, err := config.LoadTimezones(cfg.Bot.Sessions.TimezoneFile, configDir)
	if err != nil {
		logger.Warn("Failed to load timezone file, using defaults", zap.Error(err))
	}

	return &App{
		Config:       cfg,
		ConfigDir:    configDir,
		Logger:       logger,
		LogManager:   logManager,
		RedisManager: redisManager,
		StatusClient: statusClient,
		Timezones:    timezones,
		Roster:       rosterService,
		HTTPClient:   httpclient.NewHTTPClient(&cfg.Bot, logger),
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(_ context.Context) {
	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	s.LogManager.Stop()

	// Close Redis connections last as other components might need it during cleanup
	s.RedisManager.Close()
}

// probeSheet reads the roster once so bad credentials fail at startup.
func probeSheet(ctx context.Context, sheet roster.Sheet, logger *zap.Logger) error {
	rows, err := utils.WithRetry(ctx, func() ([][]any, error) {
		return sheet.Rows(ctx)
	}, utils.GetStartupRetryOptions())
	if err != nil {
		return fmt.Errorf("failed to reach roster sheet: %w", err)
	}

	logger.Info("Connected to roster sheet", zap.Int("rows", len(rows)))

	return nil
}
