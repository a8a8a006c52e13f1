package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

const (
	ledgerKeyPrefix = "approval:"
	claimTTL        = 2 * time.Minute
	valuePending    = "pending"
	valueDone       = "done"
)

// Ledger records which log messages have already been approved.
type Ledger struct {
	client rueidis.Client
	ttl    time.Duration
}

// NewLedger creates a ledger whose completed marks live for ttl.
func NewLedger(client rueidis.Client, ttl time.Duration) *Ledger {
	return &Ledger{client: client, ttl: ttl}
}

// Claim reserves a message for processing. It returns false when the message
// was already approved or is being approved right now.
func (l *Ledger) Claim(ctx context.Context, messageID string) (bool, error) {
	err := l.client.Do(ctx, l.client.B().Set().
		Key(ledgerKeyPrefix+messageID).
		Value(valuePending).
		Nx().
		Ex(claimTTL).
		Build()).Error()
	if rueidis.IsRedisNil(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to claim message %s: %w", messageID, err)
	}

	return true, nil
}

// Commit marks a claimed message as approved.
func (l *Ledger) Commit(ctx context.Context, messageID string) error {
	err := l.client.Do(ctx, l.client.B().Set().
		Key(ledgerKeyPrefix+messageID).
		Value(valueDone).
		Ex(l.ttl).
		Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to commit message %s: %w", messageID, err)
	}

	return nil
}

// Release drops a claim so the approval can be retried.
func (l *Ledger) Release(ctx context.Context, messageID string) error {
	return l.client.Do(ctx, l.client.B().Del().Key(ledgerKeyPrefix+messageID).Build()).Error()
}

// Approved reports whether a message has a completed approval mark.
func (l *Ledger) Approved(ctx context.Context, messageID string) (bool, error) {
	v, err := l.client.Do(ctx, l.client.B().Get().Key(ledgerKeyPrefix+messageID).Build()).ToString()
	if rueidis.IsRedisNil(err) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return v == valueDone, nil
}
