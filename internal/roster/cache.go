package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"github.com/tf416/rosterbot/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	memberKeyPrefix = "roster:member:"
	snapshotKey     = "roster:snapshot"
)

// Cache is a read-through Redis cache for roster rows.
// Per-member entries are evicted on writes; the snapshot only expires.
type Cache struct {
	client    rueidis.Client
	memberTTL time.Duration
	rosterTTL time.Duration
	group     singleflight.Group
	logger    *zap.Logger
}

// NewCache creates a roster cache backed by the given Redis client.
func NewCache(client rueidis.Client, memberTTL, rosterTTL time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		client:    client,
		memberTTL: memberTTL,
		rosterTTL: rosterTTL,
		logger:    logger.Named("roster_cache"),
	}
}

// GetMember returns the cached member for username, if present.
func (c *Cache) GetMember(ctx context.Context, username string) (*Member, bool) {
	data, err := c.client.Do(ctx, c.client.B().Get().Key(memberKey(username)).Build()).AsBytes()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			c.logger.Warn("Failed to read cached member", zap.String("username", username), zap.Error(err))
		}
		return nil, false
	}

	var member Member
	if err := sonic.Unmarshal(data, &member); err != nil {
		c.logger.Warn("Failed to decode cached member", zap.String("username", username), zap.Error(err))
		return nil, false
	}

	return &member, true
}

// SetMember caches a member under its username.
func (c *Cache) SetMember(ctx context.Context, member *Member) {
	data, err := sonic.Marshal(member)
	if err != nil {
		c.logger.Warn("Failed to encode member", zap.String("username", member.Username), zap.Error(err))
		return
	}

	err = c.client.Do(ctx, c.client.B().Set().
		Key(memberKey(member.Username)).
		Value(rueidis.BinaryString(data)).
		Ex(c.memberTTL).
		Build()).Error()
	if err != nil {
		c.logger.Warn("Failed to cache member", zap.String("username", member.Username), zap.Error(err))
	}
}

// EvictMember removes the cached entry for username.
func (c *Cache) EvictMember(ctx context.Context, username string) {
	if err := c.client.Do(ctx, c.client.B().Del().Key(memberKey(username)).Build()).Error(); err != nil {
		c.logger.Warn("Failed to evict member", zap.String("username", username), zap.Error(err))
	}
}

// Snapshot returns the cached whole-roster snapshot, calling load on a miss.
// Concurrent misses share a single load.
func (c *Cache) Snapshot(ctx context.Context, load func(context.Context) ([]*Member, error)) ([]*Member, error) {
	data, err := c.client.Do(ctx, c.client.B().Get().Key(snapshotKey).Build()).AsBytes()
	if err == nil {
		var members []*Member
		if err := sonic.Unmarshal(data, &members); err == nil {
			return members, nil
		}

		c.logger.Warn("Failed to decode roster snapshot", zap.Error(err))
	} else if !rueidis.IsRedisNil(err) {
		c.logger.Warn("Failed to read roster snapshot", zap.Error(err))
	}

	v, err, _ := c.group.Do(snapshotKey, func() (any, error) {
		members, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if data, err := sonic.Marshal(members); err == nil {
			err = c.client.Do(ctx, c.client.B().Set().
				Key(snapshotKey).
				Value(rueidis.BinaryString(data)).
				Ex(c.rosterTTL).
				Build()).Error()
			if err != nil {
				c.logger.Warn("Failed to cache roster snapshot", zap.Error(err))
			}
		}

		return members, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	return v.([]*Member), nil
}

func memberKey(username string) string {
	return memberKeyPrefix + utils.FoldName(username)
}
