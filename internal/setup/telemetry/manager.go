package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tf416/rosterbot/internal/setup/config"
	"github.com/tf416/rosterbot/internal/setup/telemetry/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Manager handles the creation and management of log files and directories.
// Every run gets its own timestamped session directory under logDir.
type Manager struct {
	instanceID    string // Unique identifier for this program instance
	component     string // Component identifier for this instance
	sessionDir    string // Path to the current session's log directory
	logDir        string // Base directory for all logs
	level         string // Logging level (debug, info, warn, error)
	maxLogsToKeep int    // Maximum number of log sessions to retain
	maxLogLines   int    // Maximum number of lines to keep in each log file
	toStdout      bool   // Mirror every logger to stdout

	mu        sync.Mutex
	rotators  []*logger.Rotator
	setupOnce sync.Once
	setupErr  error
}

// NewManager creates a new Manager instance.
func NewManager(component, logDir string, debugCfg *config.Debug) *Manager {
	return &Manager{
		instanceID:    uuid.New().String(),
		component:     component,
		logDir:        logDir,
		level:         debugCfg.LogLevel,
		maxLogsToKeep: debugCfg.MaxLogsToKeep,
		maxLogLines:   debugCfg.MaxLogLines,
		toStdout:      debugCfg.LogToStdout,
	}
}

// GetLogger returns the main application logger writing to main.log.
func (lm *Manager) GetLogger() (*zap.Logger, error) {
	if err := lm.setup(); err != nil {
		return nil, err
	}

	mainLogger, err := lm.initLogger(filepath.Join(lm.sessionDir, "main.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize main logger: %w", err)
	}

	return mainLogger, nil
}

// GetWorkerLogger creates a logger for a background worker.
// Each worker gets its own log file in the session directory.
func (lm *Manager) GetWorkerLogger(name string) *zap.Logger {
	if err := lm.setup(); err != nil {
		return zap.NewNop()
	}

	workerLogger, err := lm.initLogger(filepath.Join(lm.sessionDir, name+".log"))
	if err != nil {
		return zap.NewNop()
	}

	return workerLogger
}

// GetInstanceID returns the unique instance identifier for this program run.
func (lm *Manager) GetInstanceID() string {
	return lm.instanceID
}

// GetSessionDir returns the current session directory.
func (lm *Manager) GetSessionDir() string {
	return lm.sessionDir
}

// Stop closes every log file opened by the manager.
func (lm *Manager) Stop() {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	for _, r := range lm.rotators {
		_ = r.Sync()
		_ = r.Close()
	}

	lm.rotators = nil
}

// setup creates the session directory once, rotating old sessions first.
func (lm *Manager) setup() error {
	lm.setupOnce.Do(func() {
		if err := os.MkdirAll(lm.logDir, os.ModePerm); err != nil {
			lm.setupErr = fmt.Errorf("failed to create logs directory: %w", err)
			return
		}

		if err := lm.rotateLogSessions(); err != nil {
			lm.setupErr = fmt.Errorf("failed to rotate log sessions: %w", err)
			return
		}

		lm.sessionDir = filepath.Join(lm.logDir, time.Now().Format("2006-01-02_15-04-05"))
		if err := os.MkdirAll(lm.sessionDir, os.ModePerm); err != nil {
			lm.setupErr = fmt.Errorf("failed to create session directory: %w", err)
		}
	})

	return lm.setupErr
}

// initLogger creates a zap logger writing to a line-bounded file.
func (lm *Manager) initLogger(path string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(lm.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	rotator, err := logger.NewRotator(path, lm.maxLogLines)
	if err != nil {
		return nil, err
	}

	lm.mu.Lock()
	lm.rotators = append(lm.rotators, rotator)
	lm.mu.Unlock()

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(rotator), zapLevel),
	}

	if lm.toStdout {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zapLevel))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).With(
		zap.String("component", lm.component),
		zap.String("instance_id", lm.instanceID),
	), nil
}

// rotateLogSessions removes the oldest session directories so that, together
// with the session about to be created, at most maxLogsToKeep remain.
func (lm *Manager) rotateLogSessions() error {
	sessions, err := filepath.Glob(filepath.Join(lm.logDir, "*"))
	if err != nil {
		return err
	}

	keep := max(lm.maxLogsToKeep-1, 0)
	if len(sessions) <= keep {
		return nil
	}

	// Oldest first
	sort.Slice(sessions, func(i, j int) bool {
		iInfo, _ := os.Stat(sessions[i])
		jInfo, _ := os.Stat(sessions[j])

		return iInfo.ModTime().Before(jInfo.ModTime())
	})

	for _, session := range sessions[:len(sessions)-keep] {
		if err := os.RemoveAll(session); err != nil {
			return err
		}
	}

	return nil
}
