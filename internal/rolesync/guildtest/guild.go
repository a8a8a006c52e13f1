// Package guildtest provides an in-memory Discord guild for tests.
package guildtest

import (
	"context"
	"slices"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// Guild is an in-memory rolesync.Guild.
type Guild struct {
	mu        sync.Mutex
	Owner     snowflake.ID
	Roles     map[snowflake.ID][]snowflake.ID
	Nicknames map[snowflake.ID]string

	// NickErr, when set, fails every nickname change.
	NickErr error
	// RoleErr, when set, fails every role change.
	RoleErr error
}

// New creates an empty guild owned by owner.
func New(owner snowflake.ID) *Guild {
	return &Guild{
		Owner:     owner,
		Roles:     make(map[snowflake.ID][]snowflake.ID),
		Nicknames: make(map[snowflake.ID]string),
	}
}

// OwnerID implements rolesync.Guild.
func (g *Guild) OwnerID(context.Context) (snowflake.ID, error) {
	return g.Owner, nil
}

// MemberRoles implements rolesync.Guild.
func (g *Guild) MemberRoles(_ context.Context, userID snowflake.ID) ([]snowflake.ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Clone(g.Roles[userID]), nil
}

// AddRole implements rolesync.Guild.
func (g *Guild) AddRole(_ context.Context, userID, roleID snowflake.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.RoleErr != nil {
		return g.RoleErr
	}

	if !slices.Contains(g.Roles[userID], roleID) {
		g.Roles[userID] = append(g.Roles[userID], roleID)
	}

	return nil
}

// RemoveRole implements rolesync.Guild.
func (g *Guild) RemoveRole(_ context.Context, userID, roleID snowflake.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.RoleErr != nil {
		return g.RoleErr
	}

	g.Roles[userID] = slices.DeleteFunc(g.Roles[userID], func(id snowflake.ID) bool { return id == roleID })

	return nil
}

// SetNickname implements rolesync.Guild.
func (g *Guild) SetNickname(_ context.Context, userID snowflake.ID, nick string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.NickErr != nil {
		return g.NickErr
	}

	g.Nicknames[userID] = nick

	return nil
}

// HasRole reports whether the user holds the role.
func (g *Guild) HasRole(userID, roleID snowflake.ID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Contains(g.Roles[userID], roleID)
}

// Nickname returns the user's current nickname.
func (g *Guild) Nickname(userID snowflake.ID) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.Nicknames[userID]
}
