// Package guild adapts the Discord REST client to the roster sync ports.
package guild

import (
	"context"
	"fmt"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// Client is the subset of the Discord REST client used for member changes.
type Client interface {
	GetGuild(guildID snowflake.ID, withCounts bool, opts ...rest.RequestOpt) (*discord.RestGuild, error)
	GetRoles(guildID snowflake.ID, opts ...rest.RequestOpt) ([]discord.Role, error)
	GetMember(guildID, userID snowflake.ID, opts ...rest.RequestOpt) (*discord.Member, error)
	UpdateMember(guildID, userID snowflake.ID, memberUpdate discord.MemberUpdate, opts ...rest.RequestOpt) (*discord.Member, error)
	AddMemberRole(guildID, userID, roleID snowflake.ID, opts ...rest.RequestOpt) error
	RemoveMemberRole(guildID, userID, roleID snowflake.ID, opts ...rest.RequestOpt) error
}

// Guild performs member operations in a single guild.
type Guild struct {
	client  Client
	guildID snowflake.ID

	ownerMu sync.Mutex
	ownerID snowflake.ID
}

// New creates a Guild bound to guildID.
func New(client Client, guildID snowflake.ID) *Guild {
	return &Guild{client: client, guildID: guildID}
}

// ID returns the guild id.
func (g *Guild) ID() snowflake.ID {
	return g.guildID
}

// OwnerID returns the guild owner. The value is fetched once.
func (g *Guild) OwnerID(ctx context.Context) (snowflake.ID, error) {
	g.ownerMu.Lock()
	defer g.ownerMu.Unlock()

	if g.ownerID != 0 {
		return g.ownerID, nil
	}

	guild, err := g.client.GetGuild(g.guildID, false, rest.WithCtx(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to get guild %s: %w", g.guildID, err)
	}

	g.ownerID = guild.OwnerID

	return g.ownerID, nil
}

// Member fetches a guild member.
func (g *Guild) Member(ctx context.Context, userID snowflake.ID) (*discord.Member, error) {
	member, err := g.client.GetMember(g.guildID, userID, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get member %s: %w", userID, err)
	}

	return member, nil
}

// MemberRoles returns the role ids a member holds.
func (g *Guild) MemberRoles(ctx context.Context, userID snowflake.ID) ([]snowflake.ID, error) {
	member, err := g.Member(ctx, userID)
	if err != nil {
		return nil, err
	}

	return member.RoleIDs, nil
}

// RoleNames returns the names of the given roles, skipping unknown ids.
func (g *Guild) RoleNames(ctx context.Context, roleIDs []snowflake.ID) ([]string, error) {
	roles, err := g.client.GetRoles(g.guildID, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}

	byID := make(map[snowflake.ID]string, len(roles))
	for _, role := range roles {
		byID[role.ID] = role.Name
	}

	names := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}

	return names, nil
}

// AddRole gives a member a role.
func (g *Guild) AddRole(ctx context.Context, userID, roleID snowflake.ID) error {
	if err := g.client.AddMemberRole(g.guildID, userID, roleID, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to add role %s to %s: %w", roleID, userID, err)
	}

	return nil
}

// RemoveRole takes a role from a member.
func (g *Guild) RemoveRole(ctx context.Context, userID, roleID snowflake.ID) error {
	if err := g.client.RemoveMemberRole(g.guildID, userID, roleID, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to remove role %s from %s: %w", roleID, userID, err)
	}

	return nil
}

// SetNickname changes a member's server nickname.
func (g *Guild) SetNickname(ctx context.Context, userID snowflake.ID, nick string) error {
	_, err := g.client.UpdateMember(g.guildID, userID, discord.MemberUpdate{Nick: &nick}, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to set nickname of %s: %w", userID, err)
	}

	return nil
}
