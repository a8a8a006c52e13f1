package rolesync_test

import (
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tf416/rosterbot/internal/rolesync"
	"github.com/tf416/rosterbot/internal/rolesync/guildtest"
	"github.com/tf416/rosterbot/internal/roster"
	"github.com/tf416/rosterbot/internal/roster/rostertest"
	"go.uber.org/zap"
)

const (
	ownerID   snowflake.ID = 1
	userID    snowflake.ID = 500
	roleE1    snowflake.ID = 101
	roleE2    snowflake.ID = 102
	roleE3    snowflake.ID = 103
	roleLOA   snowflake.ID = 900
	userIDStr              = "500"
)

func setup(t *testing.T, rank string, codename string) (*rolesync.Syncer, *guildtest.Guild, *rostertest.Sheet, *roster.Member) {
	t.Helper()

	sheet := rostertest.NewSheet(4, rostertest.MemberRow("Alpha", codename, rank, 10, userIDStr, true, "N/A"))
	r := roster.New(sheet, roster.DefaultLayout(), nil, zap.NewNop())
	guild := guildtest.New(ownerID)

	syncer := rolesync.NewSyncer(guild, r, map[string]uint64{
		"E1": uint64(roleE1),
		"E2": uint64(roleE2),
		"E3": uint64(roleE3),
	}, uint64(roleLOA), zap.NewNop())

	member, err := r.FindByUsername(t.Context(), "Alpha")
	require.NoError(t, err)

	return syncer, guild, sheet, member
}

func TestPromote(t *testing.T) {
	t.Parallel()

	syncer, guild, sheet, member := setup(t, "E1", `"Ghost"`)
	guild.Roles[userID] = []snowflake.ID{roleE1}

	require.NoError(t, syncer.Promote(t.Context(), member, roster.E2))

	assert.False(t, guild.HasRole(userID, roleE1))
	assert.True(t, guild.HasRole(userID, roleE2))
	assert.Equal(t, `[PV2] "Ghost" | Alpha`, guild.Nickname(userID))
	assert.Equal(t, "E2", sheet.Cell(4, roster.DefaultLayout().Rank))
	assert.Equal(t, roster.E2, member.Rank)
}

func TestPromoteSoftFailures(t *testing.T) {
	t.Parallel()

	syncer, guild, sheet, member := setup(t, "E1", "")
	guild.NickErr = errors.New("missing permissions")
	guild.RoleErr = errors.New("missing permissions")

	require.NoError(t, syncer.Promote(t.Context(), member, roster.E2), "discord failures do not fail the promotion")
	assert.Equal(t, "E2", sheet.Cell(4, roster.DefaultLayout().Rank))
}

func TestPromoteGuildOwner(t *testing.T) {
	t.Parallel()

	syncer, guild, _, member := setup(t, "E1", "")
	guild.Owner = userID

	require.NoError(t, syncer.Promote(t.Context(), member, roster.E2))
	assert.True(t, guild.HasRole(userID, roleE2))
	assert.Empty(t, guild.Nickname(userID), "owner nickname is never touched")
}

func TestPromoteRosterFailure(t *testing.T) {
	t.Parallel()

	syncer, guild, sheet, member := setup(t, "E1", "")
	sheet.Err = errors.New("sheet down")

	require.Error(t, syncer.Promote(t.Context(), member, roster.E2))
	assert.True(t, guild.HasRole(userID, roleE2), "role change is not rolled back")
	assert.Equal(t, roster.E1, member.Rank)
}

func TestPromoteWithoutDiscordID(t *testing.T) {
	t.Parallel()

	syncer, guild, sheet, member := setup(t, "E1", "")
	member.DiscordID = ""

	require.NoError(t, syncer.Promote(t.Context(), member, roster.E2))
	assert.Empty(t, guild.Roles)
	assert.Equal(t, "E2", sheet.Cell(4, roster.DefaultLayout().Rank))
}

func TestLOA(t *testing.T) {
	t.Parallel()

	syncer, guild, _, member := setup(t, "E3", `"Ghost"`)

	require.NoError(t, syncer.EnterLOA(t.Context(), member))
	assert.True(t, guild.HasRole(userID, roleLOA))
	assert.Equal(t, `[LOA] "Ghost" | Alpha`, guild.Nickname(userID))

	require.NoError(t, syncer.LeaveLOA(t.Context(), member))
	assert.False(t, guild.HasRole(userID, roleLOA))
	assert.Equal(t, `[PFC] "Ghost" | Alpha`, guild.Nickname(userID))

	guild.NickErr = errors.New("forbidden")
	err := syncer.EnterLOA(t.Context(), member)
	require.Error(t, err)
	assert.True(t, guild.HasRole(userID, roleLOA), "role is applied even when the nickname fails")
}

func TestRankFromRoles(t *testing.T) {
	t.Parallel()

	syncer, _, _, _ := setup(t, "E1", "")

	assert.Equal(t, roster.E3, syncer.RankFromRoles([]snowflake.ID{roleE1, roleE3, 777}))
	assert.Equal(t, roster.RankUnknown, syncer.RankFromRoles([]snowflake.ID{777}))
}
