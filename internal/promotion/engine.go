package promotion

import (
	"context"
	"errors"
	"fmt"

	"github.com/tf416/rosterbot/internal/roster"
	"go.uber.org/zap"
)

var ErrNegativeHours = errors.New("hours must not be negative")

// Promoter applies a rank change to a member across Discord and the roster.
type Promoter interface {
	Promote(ctx context.Context, member *roster.Member, to roster.Rank) error
}

// Store persists member changes. Lock and Refresh let the engine re-read a
// member's totals under a per-member lock before writing them back.
type Store interface {
	Lock(username string) (unlock func())
	Refresh(ctx context.Context, member *roster.Member) error
	Update(ctx context.Context, member *roster.Member, c roster.Changes) error
}

// Outcome describes a points change and the promotions it triggered.
type Outcome struct {
	Awarded  int
	Previous int
	Total    int
	// Promotions lists every rank reached automatically, in order.
	Promotions []roster.Rank
	// Pending is set when the member qualifies for a tier that needs an application.
	Pending *Eligibility
}

// Promoted reports whether the member moved up at least one rank.
func (o *Outcome) Promoted() bool {
	return len(o.Promotions) > 0
}

// Engine applies points to roster members and evaluates promotions.
type Engine struct {
	store    Store
	promoter Promoter
	table    Table
	perHour  int
	logger   *zap.Logger
}

// NewEngine creates a points engine.
func NewEngine(store Store, promoter Promoter, table Table, perHour int, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		promoter: promoter,
		table:    table,
		perHour:  perHour,
		logger:   logger.Named("promotion"),
	}
}

// Table returns the promotion table in use.
func (e *Engine) Table() Table {
	return e.table
}

// Award grants hours × rate points. The new total and, when markActive is
// set, the activity flag are written in one batch before promotion is evaluated.
// member is reloaded from the roster first.
func (e *Engine) Award(ctx context.Context, member *roster.Member, hours int, markActive bool) (*Outcome, error) {
	if hours < 0 {
		return nil, ErrNegativeHours
	}

	unlock := e.store.Lock(member.Username)
	defer unlock()

	if err := e.store.Refresh(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to reload member: %w", err)
	}

	points := hours * e.perHour
	total := member.Points + points

	changes := roster.Changes{Points: &total}
	if markActive {
		active := true
		changes.Active = &active
	}

	outcome := &Outcome{Awarded: points, Previous: member.Points, Total: total}

	if err := e.store.Update(ctx, member, changes); err != nil {
		return nil, fmt.Errorf("failed to award points: %w", err)
	}

	e.logger.Info("Awarded points",
		zap.String("username", member.Username),
		zap.Int("hours", hours),
		zap.Int("points", points),
		zap.Int("total", total))

	e.evaluate(ctx, member, outcome)

	return outcome, nil
}

// Adjust adds delta points (negative to remove), clamping the total at zero.
// Promotion is evaluated only when points were added.
func (e *Engine) Adjust(ctx context.Context, member *roster.Member, delta int) (*Outcome, error) {
	unlock := e.store.Lock(member.Username)
	defer unlock()

	if err := e.store.Refresh(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to reload member: %w", err)
	}

	total := max(member.Points+delta, 0)
	outcome := &Outcome{Awarded: total - member.Points, Previous: member.Points, Total: total}

	if err := e.store.Update(ctx, member, roster.Changes{Points: &total}); err != nil {
		return nil, fmt.Errorf("failed to adjust points: %w", err)
	}

	e.logger.Info("Adjusted points",
		zap.String("username", member.Username),
		zap.Int("delta", delta),
		zap.Int("total", total))

	if delta > 0 {
		e.evaluate(ctx, member, outcome)
	}

	return outcome, nil
}

// evaluate climbs the ladder while the member qualifies for automatic tiers.
// The caller holds the member lock.
func (e *Engine) evaluate(ctx context.Context, member *roster.Member, outcome *Outcome) {
	for range len(e.table) {
		elig := e.table.Check(member.Points, member.Rank)
		if !elig.Eligible {
			return
		}

		if elig.NeedsApplication {
			outcome.Pending = &elig
			return
		}

		if err := e.promoter.Promote(ctx, member, elig.To); err != nil {
			e.logger.Error("Failed to promote member",
				zap.String("username", member.Username),
				zap.Stringer("to", elig.To),
				zap.Error(err))

			return
		}

		outcome.Promotions = append(outcome.Promotions, elig.To)
	}
}
