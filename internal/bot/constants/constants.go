package constants

import "time"

const (
	// Commands.
	LeaderboardCommandName = "leaderboard"
	PointsCommandName      = "points"
	AddCommandName         = "add"
	RemoveCommandName      = "remove"
	ResetCommandName       = "reset"
	LOACommandName         = "loa"
	ClockInCommandName     = "clockin"
	ClockOutCommandName    = "clockout"
	TimeCommandName        = "time"
	DeployCommandName      = "deploy"

	// Command options.
	OptionUser     = "user"
	OptionMember   = "member"
	OptionAmount   = "amount"
	OptionTimezone = "timezone"
	OptionNote     = "note"

	// Leaderboard.
	LeaderboardPerPage        = 10
	LeaderboardPageCustomID   = "leaderboard_page"
	LeaderboardCustomIDSep    = ":"
	LeaderboardPrevLabel      = "◀"
	LeaderboardNextLabel      = "▶"
	LeaderboardEmbedColor     = 0xF1C40F
	StatusBoardEmbedColor     = 0x2ECC71
	StatusBoardIdleEmbedColor = 0x95A5A6
	DeployEmbedColor          = 0xE74C3C

	// Reactions.
	ApprovalEmoji = "✅"

	// Timeouts.
	ThreadJoinConcurrency = 5
	ProofUploadWorkers    = 4
	MaxProofFileSize      = 25 << 20
	CommandTimeout        = 15 * time.Second

	// Redis keys.
	StatusBoardMessageKey = "statusboard:message"
)
