package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentBotVersion    = 1
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig
	Bot    BotConfig
}

// CommonConfig contains configuration shared by every command of the binary.
type CommonConfig struct {
	// Version of the common config.
	Version int          `koanf:"version"`
	Debug   Debug        `koanf:"debug"`
	Redis   Redis        `koanf:"redis"`
	Sheets  GoogleSheets `koanf:"google_sheets"`
}

// BotConfig contains Discord bot specific configuration.
type BotConfig struct {
	// Version of the bot config.
	Version int `koanf:"version"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Attachment download retry configuration.
	Retry Retry `koanf:"retry"`
	// Attachment download circuit breaker configuration.
	CircuitBreaker CircuitBreaker `koanf:"circuit_breaker"`
	// Discord configuration.
	Discord Discord `koanf:"discord"`
	// Points and promotion configuration.
	Points Points `koanf:"points"`
	// Clock-in session configuration.
	Sessions Sessions `koanf:"sessions"`
	// Cache configuration.
	Cache Cache `koanf:"cache"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
	// Also write logs to stdout.
	LogToStdout bool `koanf:"log_to_stdout"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// GoogleSheets contains the roster spreadsheet configuration.
type GoogleSheets struct {
	// Path to the service account credentials JSON file.
	CredentialsFile string `koanf:"credentials_file"`
	// Spreadsheet ID of the roster.
	SpreadsheetID string `koanf:"spreadsheet_id"`
	// Worksheet (tab) name holding the roster.
	SheetName string `koanf:"sheet_name"`
	// Column layout of the roster.
	Layout SheetLayout `koanf:"layout"`
}

// SheetLayout maps roster fields to zero-based column offsets.
type SheetLayout struct {
	// First data row (1-based, rows above hold headers).
	FirstRow int `koanf:"first_row"`
	// Last column read from each row, in A1 notation.
	LastColumn string `koanf:"last_column"`
	Username   int    `koanf:"username"`
	Codename   int    `koanf:"codename"`
	Rank       int    `koanf:"rank"`
	Squadron   int    `koanf:"squadron"`
	Status     int    `koanf:"status"`
	Activity   int    `koanf:"activity"`
	LOANotice  int    `koanf:"loa_notice"`
	Removal    int    `koanf:"removal"`
	Accred     int    `koanf:"accred"`
	Notes      int    `koanf:"notes"`
	Points     int    `koanf:"points"`
	DiscordID  int    `koanf:"discord_id"`
}

// Discord contains Discord bot configuration.
type Discord struct {
	// Discord bot token for authentication.
	Token string `koanf:"token"`
	// Guild the bot operates in.
	GuildID uint64 `koanf:"guild_id"`
	// Forum channel whose threads hold activity logs.
	ForumChannelID uint64 `koanf:"forum_channel_id"`
	// Channel where LOA requests are posted.
	LOAChannelID uint64 `koanf:"loa_channel_id"`
	// Channel holding the online status board message.
	StatusChannelID uint64 `koanf:"status_channel_id"`
	// Channel where deployments are announced.
	DeploymentChannelID uint64 `koanf:"deployment_channel_id"`
	// Channel where promotions are announced.
	NotifierChannelID uint64 `koanf:"notifier_channel_id"`
	// Role given to members on leave.
	LOARoleID uint64 `koanf:"loa_role_id"`
	// Members holding any of these roles are never put on LOA.
	LOAIgnoredRoleIDs []uint64 `koanf:"loa_ignored_role_ids"`
	// Roles allowed to use staff commands besides Manage Roles holders.
	StaffRoleIDs []uint64 `koanf:"staff_role_ids"`
	// Rank name (E1..E9) to Discord role ID.
	RankRoles map[string]uint64 `koanf:"rank_roles"`
	// Squadron role name to squadron label.
	SquadronRoles map[string]string `koanf:"squadron_roles"`
	// Squadron used when a member holds no squadron role.
	DefaultSquadron string `koanf:"default_squadron"`
}

// Points contains the points and promotion configuration.
type Points struct {
	// Points awarded per full logged hour.
	PerHour int `koanf:"per_hour"`
	// Minimum logged hours for a log to earn points.
	MinHours int `koanf:"min_hours"`
	// Rank name (E1..E9) to the points needed to leave it.
	Thresholds map[string]int `koanf:"thresholds"`
	// Form linked when a promotion needs an application.
	ApplicationFormURL string `koanf:"application_form_url"`
}

// Sessions contains clock-in session configuration.
type Sessions struct {
	// Seconds a clocked-out member has to post proof.
	ProofTimeout int `koanf:"proof_timeout"`
	// Path to the NAME,offset timezone table.
	TimezoneFile string `koanf:"timezone_file"`
}

// Retry contains retry configuration.
type Retry struct {
	// Maximum retry attempts.
	MaxRetries uint64 `koanf:"max_retries"`
	// Initial retry delay in milliseconds.
	Delay int `koanf:"delay"`
	// Maximum retry delay in milliseconds.
	MaxDelay int `koanf:"max_delay"`
}

// CircuitBreaker contains circuit breaker configuration.
type CircuitBreaker struct {
	// Requests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests"`
	// Milliseconds between count resets while closed.
	Interval int `koanf:"interval"`
	// Milliseconds the breaker stays open.
	Timeout int `koanf:"timeout"`
}

// Cache contains roster cache configuration.
type Cache struct {
	// Seconds a per-member entry stays cached.
	MemberTTL int `koanf:"member_ttl"`
	// Seconds the whole-roster snapshot stays cached.
	RosterTTL int `koanf:"roster_ttl"`
}

// configPaths lists the directories searched for config files, in order.
func configPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return []string{
		".rosterbot",
		homeDir + "/.rosterbot/config",
		"/etc/rosterbot/config",
		"/app/config",
		"config",
		".",
	}, nil
}

// LoadConfig loads the configuration from the first directory holding each file.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	paths, err := configPaths()
	if err != nil {
		return nil, "", err
	}

	return LoadConfigFrom(paths...)
}

// LoadConfigFrom loads the configuration searching only the given directories.
func LoadConfigFrom(paths ...string) (*Config, string, error) {
	k := koanf.New(".")

	// Load all config files
	var usedConfigPath string

	configFiles := []string{"common", "bot"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range paths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Check versions for each config file
	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("bot", config.Bot.Version, CurrentBotVersion); err != nil {
		return nil, "", err
	}

	config.applyDefaults()

	return &config, usedConfigPath, nil
}

// applyDefaults fills values the roster layout and bot rely on when left unset.
func (c *Config) applyDefaults() {
	layout := &c.Common.Sheets.Layout
	if layout.FirstRow == 0 {
		*layout = DefaultLayout()
	}

	if c.Common.Sheets.SheetName == "" {
		c.Common.Sheets.SheetName = "Roster"
	}

	if c.Common.Debug.LogLevel == "" {
		c.Common.Debug.LogLevel = "info"
	}

	if c.Common.Debug.MaxLogsToKeep == 0 {
		c.Common.Debug.MaxLogsToKeep = 10
	}

	if c.Common.Debug.MaxLogLines == 0 {
		c.Common.Debug.MaxLogLines = 10000
	}

	if c.Bot.Points.PerHour == 0 {
		c.Bot.Points.PerHour = 5
	}

	if c.Bot.Points.MinHours == 0 {
		c.Bot.Points.MinHours = 1
	}

	if c.Bot.Sessions.ProofTimeout == 0 {
		c.Bot.Sessions.ProofTimeout = 300
	}

	if c.Bot.Cache.MemberTTL == 0 {
		c.Bot.Cache.MemberTTL = 60
	}

	if c.Bot.Cache.RosterTTL == 0 {
		c.Bot.Cache.RosterTTL = 60
	}

	if c.Bot.Discord.DefaultSquadron == "" {
		c.Bot.Discord.DefaultSquadron = "Protection"
	}

	if c.Bot.RequestTimeout == 0 {
		c.Bot.RequestTimeout = 10000
	}

	if c.Bot.Retry.MaxRetries == 0 {
		c.Bot.Retry = Retry{MaxRetries: 3, Delay: 500, MaxDelay: 5000}
	}

	if c.Bot.CircuitBreaker.MaxRequests == 0 {
		c.Bot.CircuitBreaker = CircuitBreaker{MaxRequests: 5, Interval: 60000, Timeout: 30000}
	}
}

// DefaultLayout returns the column layout of the stock roster sheet.
func DefaultLayout() SheetLayout {
	return SheetLayout{
		FirstRow:   4,
		LastColumn: "Q",
		Username:   1,
		Codename:   3,
		Rank:       5,
		Squadron:   6,
		Status:     8,
		Activity:   9,
		LOANotice:  10,
		Removal:    11,
		Accred:     12,
		Notes:      13,
		Points:     15,
		DiscordID:  16,
	}
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
		)
	}

	return nil
}
