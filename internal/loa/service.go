package loa

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
	ErrExempt     = errors.New("member holds a role exempt from leave handling")
	ErrNoUsername = errors.New("could not determine roster username")
)

// Directory is the roster access the leave workflow needs.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (*roster.Member, error)
	FindByDiscordID(ctx context.Context, discordID string) (*roster.Member, error)
	EnterLOA(ctx context.Context, member *roster.Member, note string) error
	LeaveLOA(ctx context.Context, member *roster.Member) error
}

// RoleSync applies leave to Discord roles and nicknames.
type RoleSync interface {
	EnterLOA(ctx context.Context, member *roster.Member) error
	LeaveLOA(ctx context.Context, member *roster.Member) error
}

// Service approves and removes leave.
type Service struct {
	directory Directory
	roles     RoleSync
	ignored   []snowflake.ID
	logger    *zap.Logger
}

// NewService creates a Service. Members holding any of ignoredRoles are never
// put on leave by approval.
func NewService(directory Directory, roles RoleSync, ignoredRoles []uint64, logger *zap.Logger) *Service {
	ignored := make([]snowflake.ID, 0, len(ignoredRoles))
	for _, id := range ignoredRoles {
		ignored = append(ignored, snowflake.ID(id))
	}

	return &Service{
		directory: directory,
		roles:     roles,
		ignored:   ignored,
		logger:    logger.Named("loa"),
	}
}

// Approve puts the author of an approved leave request on leave. The member is
// resolved by Discord id; the request's end date, if any, becomes a note on the
// roster notice cell.
func (s *Service) Approve(ctx context.Context, authorID snowflake.ID, authorRoles []snowflake.ID, content string) (*roster.Member, error) {
	for _, role := range authorRoles {
		if slices.Contains(s.ignored, role) {
			return nil, ErrExempt
		}
	}

	member, err := s.directory.FindByDiscordID(ctx, authorID.String())
	if err != nil {
		return nil, err
	}

	note := ""
	if end := ExtractEndDate(content); end != "" {
		note = "Ends: " + end
	}

	if err := s.directory.EnterLOA(ctx, member, note); err != nil {
		return nil, err
	}

	if err := s.roles.EnterLOA(ctx, member); err != nil {
		s.logger.Warn("Leave applied with Discord errors",
			zap.String("username", member.Username),
			zap.Error(err))
	}

	s.logger.Info("Leave approved",
		zap.String("username", member.Username),
		zap.String("note", note))

	return member, nil
}

// Remove takes a member off leave. The roster username is found through the
// Discord id, falling back to the display name without its rank prefix.
func (s *Service) Remove(ctx context.Context, userID snowflake.ID, displayName string) (*roster.Member, error) {
	member, err := s.resolve(ctx, userID, displayName)
	if err != nil {
		return nil, err
	}

	if err := s.directory.LeaveLOA(ctx, member); err != nil {
		return nil, err
	}

	if err := s.roles.LeaveLOA(ctx, member); err != nil {
		s.logger.Warn("Leave removed with Discord errors",
			zap.String("username", member.Username),
			zap.Error(err))
	}

	s.logger.Info("Leave removed", zap.String("username", member.Username))

	return member, nil
}

func (s *Service) resolve(ctx context.Context, userID snowflake.ID, displayName string) (*roster.Member, error) {
	member, err := s.directory.FindByDiscordID(ctx, userID.String())
	if err == nil {
		return member, nil
	}

	if !errors.Is(err, roster.ErrMemberNotFound) {
		return nil, err
	}

	username := nickname.Username(displayName)
	if username == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoUsername, userID)
	}

	member, err = s.directory.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if member.DiscordID == "" {
		member.DiscordID = userID.String()
	}

	return member, nil
}
