package loa_test

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tf416/rosterbot/internal/loa"
	"github.com/tf416/rosterbot/internal/rolesync"
	"github.com/tf416/rosterbot/internal/rolesync/guildtest"
	"github.com/tf416/rosterbot/internal/roster"
	"github.com/tf416/rosterbot/internal/roster/rostertest"
	"go.uber.org/zap"
)

const (
	loaRole    = snowflake.ID(90)
	exemptRole = snowflake.ID(91)
)

func newService(t *testing.T, rows ...[]any) (*loa.Service, *rostertest.Sheet, *guildtest.Guild) {
	t.Helper()

	sheet := rostertest.NewSheet(4, rows...)
	r := roster.New(sheet, roster.DefaultLayout(), nil, zap.NewNop())
	guild := guildtest.New(1)
	syncer := rolesync.NewSyncer(guild, r, map[string]uint64{"E3": 13}, uint64(loaRole), zap.NewNop())

	return loa.NewService(r, syncer, []uint64{uint64(exemptRole)}, zap.NewNop()), sheet, guild
}

func TestApproveLeave(t *testing.T) {
	t.Parallel()

	svc, sheet, guild := newService(t, rostertest.MemberRow("Ghost", "\"Reaper\"", "E3", 40, "500", true, "N/A"))
	layout := roster.DefaultLayout()

	member, err := svc.Approve(t.Context(), 500, nil, sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, "Ghost", member.Username)

	assert.Equal(t, roster.NoticeLOA, sheet.Cell(4, layout.LOANotice))
	assert.Equal(t, "FALSE", sheet.Cell(4, layout.Activity))

	note := sheet.FormatAt(4, layout.LOANotice).Note
	require.NotNil(t, note)
	assert.Equal(t, "Ends: 14/06/2026", *note)

	assert.True(t, guild.HasRole(500, loaRole))
	assert.Equal(t, `[LOA] "Reaper" | Ghost`, guild.Nickname(500))
}

func TestApproveLeaveExempt(t *testing.T) {
	t.Parallel()

	svc, sheet, guild := newService(t, rostertest.MemberRow("Ghost", "", "E3", 40, "500", true, "N/A"))

	_, err := svc.Approve(t.Context(), 500, []snowflake.ID{exemptRole}, sampleRequest)
	require.ErrorIs(t, err, loa.ErrExempt)

	assert.Zero(t, sheet.Writes)
	assert.False(t, guild.HasRole(500, loaRole))
}

func TestApproveLeaveUnknownMember(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t, rostertest.MemberRow("Ghost", "", "E3", 40, "500", true, "N/A"))

	_, err := svc.Approve(t.Context(), 777, nil, sampleRequest)
	require.ErrorIs(t, err, roster.ErrMemberNotFound)
}

func TestRemoveLeave(t *testing.T) {
	t.Parallel()

	svc, sheet, guild := newService(t, rostertest.MemberRow("Ghost", "", "E3", 40, "500", false, "LoA"))
	guild.Roles[500] = []snowflake.ID{loaRole, 13}
	layout := roster.DefaultLayout()

	member, err := svc.Remove(t.Context(), 500, "[LOA] Ghost")
	require.NoError(t, err)
	assert.Equal(t, "Ghost", member.Username)

	assert.Equal(t, roster.NoticeNone, sheet.Cell(4, layout.LOANotice))
	assert.False(t, guild.HasRole(500, loaRole))
	assert.Equal(t, "[PFC] Ghost", guild.Nickname(500))
}

func TestRemoveLeaveByDisplayName(t *testing.T) {
	t.Parallel()

	svc, sheet, guild := newService(t, rostertest.MemberRow("Ghost", "", "E3", 40, "", false, "LoA"))

	member, err := svc.Remove(t.Context(), 500, "[LOA] Ghost")
	require.NoError(t, err)
	assert.Equal(t, "500", member.DiscordID)
	assert.Equal(t, roster.NoticeNone, sheet.Cell(4, roster.DefaultLayout().LOANotice))
	assert.Equal(t, "[PFC] Ghost", guild.Nickname(500))
}

func TestRemoveLeaveErrors(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t, rostertest.MemberRow("Ghost", "", "E3", 40, "500", false, "LoA"))

	_, err := svc.Remove(t.Context(), 600, "[LOA]")
	require.ErrorIs(t, err, loa.ErrNoUsername)

	_, err = svc.Remove(t.Context(), 600, "Stranger")
	require.ErrorIs(t, err, roster.ErrMemberNotFound)
}
