// Package rolesync keeps Discord rank roles and nicknames in step with the roster.
package rolesync

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/disgoorg/snowflake/v2"
	"github.com/tf416/rosterbot/internal/nickname"
	"github.com/tf416/rosterbot/internal/roster"
	"go.uber.org/zap"
)

var (
	ErrInvalidDiscordID = errors.New("member has no valid discord id")
	ErrGuildOwner       = errors.New("guild owner nickname cannot be changed")
)

// Guild is the subset of Discord guild operations the syncer needs.
type Guild interface {
	OwnerID(ctx context.Context) (snowflake.ID, error)
	MemberRoles(ctx context.Context, userID snowflake.ID) ([]snowflake.ID, error)
	AddRole(ctx context.Context, userID, roleID snowflake.ID) error
	RemoveRole(ctx context.Context, userID, roleID snowflake.ID) error
	SetNickname(ctx context.Context, userID snowflake.ID, nick string) error
}

// Store persists member changes.
type Store interface {
	Update(ctx context.Context, member *roster.Member, c roster.Changes) error
}

// Syncer applies rank and leave changes to Discord and the roster. Discord
// steps are independent: a failed step is logged and the rest still run.
type Syncer struct {
	guild     Guild
	store     Store
	rankRoles map[roster.Rank]snowflake.ID
	loaRole   snowflake.ID
	logger    *zap.Logger
}

// NewSyncer creates a Syncer. rankRoles maps rank names ("E1".."E9") to role ids.
func NewSyncer(guild Guild, store Store, rankRoles map[string]uint64, loaRole uint64, logger *zap.Logger) *Syncer {
	roles := make(map[roster.Rank]snowflake.ID, len(rankRoles))
	for name, id := range rankRoles {
		if rank := roster.ParseRank(name); rank.Valid() {
			roles[rank] = snowflake.ID(id)
		}
	}

	return &Syncer{
		guild:     guild,
		store:     store,
		rankRoles: roles,
		loaRole:   snowflake.ID(loaRole),
		logger:    logger.Named("rolesync"),
	}
}

// Promote swaps the member's rank role, updates the nickname and persists the new rank.
// Only a failure to persist the rank is returned.
func (s *Syncer) Promote(ctx context.Context, member *roster.Member, to roster.Rank) error {
	from := member.Rank

	if userID, err := discordID(member); err != nil {
		s.logger.Warn("Skipping Discord promotion steps", zap.String("username", member.Username), zap.Error(err))
	} else {
		roles := s.memberRoles(ctx, userID)

		if old, ok := s.rankRoles[from]; ok && slices.Contains(roles, old) {
			s.softFail(s.guild.RemoveRole(ctx, userID, old), "remove rank role", member)
		}

		if role, ok := s.rankRoles[to]; ok && !slices.Contains(roles, role) {
			s.softFail(s.guild.AddRole(ctx, userID, role), "add rank role", member)
		} else if !ok {
			s.logger.Warn("No role configured for rank", zap.Stringer("rank", to))
		}

		promoted := *member
		promoted.Rank = to
		s.softFail(s.setNickname(ctx, userID, nickname.ForMember(&promoted)), "set nickname", member)
	}

	if err := s.store.Update(ctx, member, roster.Changes{Rank: &to}); err != nil {
		return fmt.Errorf("failed to persist rank %s: %w", to, err)
	}

	s.logger.Info("Promoted member",
		zap.String("username", member.Username),
		zap.Stringer("from", from),
		zap.Stringer("to", to))

	return nil
}

// EnterLOA gives the member the leave role and the [LOA] nickname.
// Returns the joined soft failures, if any.
func (s *Syncer) EnterLOA(ctx context.Context, member *roster.Member) error {
	userID, err := discordID(member)
	if err != nil {
		return err
	}

	var errs []error
	if s.loaRole != 0 && !slices.Contains(s.memberRoles(ctx, userID), s.loaRole) {
		errs = append(errs, s.softFail(s.guild.AddRole(ctx, userID, s.loaRole), "add LOA role", member))
	}

	errs = append(errs, s.softFail(s.setNickname(ctx, userID, nickname.ForLOA(member)), "set LOA nickname", member))

	return errors.Join(errs...)
}

// LeaveLOA removes the leave role and restores the rank nickname.
// Returns the joined soft failures, if any.
func (s *Syncer) LeaveLOA(ctx context.Context, member *roster.Member) error {
	userID, err := discordID(member)
	if err != nil {
		return err
	}

	var errs []error
	if s.loaRole != 0 && slices.Contains(s.memberRoles(ctx, userID), s.loaRole) {
		errs = append(errs, s.softFail(s.guild.RemoveRole(ctx, userID, s.loaRole), "remove LOA role", member))
	}

	errs = append(errs, s.softFail(s.setNickname(ctx, userID, nickname.ForMember(member)), "restore nickname", member))

	return errors.Join(errs...)
}

// RankFromRoles returns the highest rank whose role is among roleIDs.
func (s *Syncer) RankFromRoles(roleIDs []snowflake.ID) roster.Rank {
	best := roster.RankUnknown
	for rank, role := range s.rankRoles {
		if rank > best && slices.Contains(roleIDs, role) {
			best = rank
		}
	}

	return best
}

// setNickname changes a nickname unless the target owns the guild.
func (s *Syncer) setNickname(ctx context.Context, userID snowflake.ID, nick string) error {
	owner, err := s.guild.OwnerID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get guild owner: %w", err)
	}

	if owner == userID {
		return ErrGuildOwner
	}

	return s.guild.SetNickname(ctx, userID, nick)
}

func (s *Syncer) memberRoles(ctx context.Context, userID snowflake.ID) []snowflake.ID {
	roles, err := s.guild.MemberRoles(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to get member roles", zap.Stringer("userID", userID), zap.Error(err))
		return nil
	}

	return roles
}

func (s *Syncer) softFail(err error, step string, member *roster.Member) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrGuildOwner) {
		s.logger.Debug("Skipped nickname for guild owner", zap.String("username", member.Username))
	} else {
		s.logger.Warn("Role sync step failed",
			zap.String("step", step),
			zap.String("username", member.Username),
			zap.Error(err))
	}

	return fmt.Errorf("%s: %w", step, err)
}

func discordID(member *roster.Member) (snowflake.ID, error) {
	id, err := snowflake.Parse(member.DiscordID)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDiscordID, member.Username)
	}

	return id, nil
}
