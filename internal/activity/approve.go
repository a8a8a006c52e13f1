package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/tf416/rosterbot/internal/promotion"
	"github.com/tf416/rosterbot/internal/roster"
	"go.uber.org/zap"
)

// Request is an approval of one forum log message.
type Request struct {
	MessageID  string
	Content    string
	ThreadName string
	AuthorID   string
}

// Result describes what an approval did.
type Result struct {
	// Duplicate is set when the message was already approved; nothing else is filled.
	Duplicate    bool
	Member       *roster.Member
	Time         TotalTime
	OnLOA        bool
	BelowMinimum bool
	Outcome      *promotion.Outcome
}

// Directory resolves and updates roster members.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (*roster.Member, error)
	FindByDiscordID(ctx context.Context, discordID string) (*roster.Member, error)
	Lock(username string) (unlock func())
	Update(ctx context.Context, member *roster.Member, c roster.Changes) error
}

// Approver turns approved logs into roster changes.
type Approver struct {
	directory Directory
	engine    *promotion.Engine
	ledger    *Ledger
	minHours  int
	logger    *zap.Logger
}

// NewApprover creates an Approver.
func NewApprover(directory Directory, engine *promotion.Engine, ledger *Ledger, minHours int, logger *zap.Logger) *Approver {
	return &Approver{
		directory: directory,
		engine:    engine,
		ledger:    ledger,
		minHours:  minHours,
		logger:    logger.Named("approver"),
	}
}

// Approve processes an approved log. Points are computed from the roster's
// current total, and the message is marked approved only after the roster
// write succeeds, so a failed approval can simply be retried.
func (a *Approver) Approve(ctx context.Context, req Request) (*Result, error) {
	t, ok := ParseTotalTime(req.Content)
	if !ok {
		return nil, ErrTotalTimeNotFound
	}

	if err := checkMinutes(t); err != nil {
		return nil, err
	}

	claimed, err := a.ledger.Claim(ctx, req.MessageID)
	if err != nil {
		return nil, err
	}

	if !claimed {
		a.logger.Debug("Skipping already approved log", zap.String("messageID", req.MessageID))
		return &Result{Duplicate: true}, nil
	}

	result, err := a.apply(ctx, req, t)
	if err != nil {
		if relErr := a.ledger.Release(ctx, req.MessageID); relErr != nil {
			a.logger.Warn("Failed to release approval claim", zap.String("messageID", req.MessageID), zap.Error(relErr))
		}

		return nil, err
	}

	if err := a.ledger.Commit(ctx, req.MessageID); err != nil {
		a.logger.Error("Failed to record approval", zap.String("messageID", req.MessageID), zap.Error(err))
	}

	return result, nil
}

func (a *Approver) apply(ctx context.Context, req Request, t TotalTime) (*Result, error) {
	member, err := a.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &Result{Member: member, Time: t, OnLOA: member.OnLOA()}

	if t.Hours >= a.minHours {
		outcome, err := a.engine.Award(ctx, member, t.Hours, !result.OnLOA)
		if err != nil {
			return nil, err
		}

		result.Outcome = outcome
	} else {
		result.BelowMinimum = true

		if !result.OnLOA {
			active := true

			unlock := a.directory.Lock(member.Username)
			err := a.directory.Update(ctx, member, roster.Changes{Active: &active})
			unlock()

			if err != nil {
				return nil, fmt.Errorf("failed to mark activity: %w", err)
			}
		}
	}

	a.logger.Info("Approved activity log",
		zap.String("username", member.Username),
		zap.String("messageID", req.MessageID),
		zap.Stringer("time", t),
		zap.Bool("onLOA", result.OnLOA),
		zap.Bool("belowMinimum", result.BelowMinimum))

	return result, nil
}

// resolve finds the log's owner: the thread title is the roster username,
// with the author's Discord id as fallback.
func (a *Approver) resolve(ctx context.Context, req Request) (*roster.Member, error) {
	member, err := a.directory.FindByUsername(ctx, req.ThreadName)
	if err == nil {
		if member.DiscordID == "" {
			member.DiscordID = req.AuthorID
		}

		return member, nil
	}

	if !errors.Is(err, roster.ErrMemberNotFound) {
		return nil, err
	}

	member, err = a.directory.FindByDiscordID(ctx, req.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve log owner %q: %w", req.ThreadName, err)
	}

	return member, nil
}
