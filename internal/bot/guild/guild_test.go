package guild_test

import (
	"errors"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tf416/rosterbot/internal/bot/guild"
)

type fakeClient struct {
	owner      snowflake.ID
	guildCalls int
	members    map[snowflake.ID]*discord.Member
	roles      []discord.Role
	nicks      map[snowflake.ID]string
	added      []snowflake.ID
	removed    []snowflake.ID
	err        error
}

func (f *fakeClient) GetGuild(guildID snowflake.ID, _ bool, _ ...rest.RequestOpt) (*discord.RestGuild, error) {
	f.guildCalls++
	if f.err != nil {
		return nil, f.err
	}

	return &discord.RestGuild{Guild: discord.Guild{ID: guildID, OwnerID: f.owner}}, nil
}

func (f *fakeClient) GetRoles(_ snowflake.ID, _ ...rest.RequestOpt) ([]discord.Role, error) {
	return f.roles, f.err
}

func (f *fakeClient) GetMember(_, userID snowflake.ID, _ ...rest.RequestOpt) (*discord.Member, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.members[userID], nil
}

func (f *fakeClient) UpdateMember(_, userID snowflake.ID, update discord.MemberUpdate, _ ...rest.RequestOpt) (*discord.Member, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.nicks[userID] = *update.Nick

	return f.members[userID], nil
}

func (f *fakeClient) AddMemberRole(_, _, roleID snowflake.ID, _ ...rest.RequestOpt) error {
	f.added = append(f.added, roleID)
	return f.err
}

func (f *fakeClient) RemoveMemberRole(_, _, roleID snowflake.ID, _ ...rest.RequestOpt) error {
	f.removed = append(f.removed, roleID)
	return f.err
}

func newFake() *fakeClient {
	return &fakeClient{
		owner: 1,
		members: map[snowflake.ID]*discord.Member{
			7: {RoleIDs: []snowflake.ID{100, 200}},
		},
		roles: []discord.Role{
			{ID: 100, Name: "Protection"},
			{ID: 200, Name: "E3"},
		},
		nicks: make(map[snowflake.ID]string),
	}
}

func TestOwnerIDIsFetchedOnce(t *testing.T) {
	t.Parallel()

	client := newFake()
	g := guild.New(client, 99)

	for range 3 {
		owner, err := g.OwnerID(t.Context())
		require.NoError(t, err)
		assert.Equal(t, snowflake.ID(1), owner)
	}

	assert.Equal(t, 1, client.guildCalls)
}

func TestMemberRolesAndNames(t *testing.T) {
	t.Parallel()

	g := guild.New(newFake(), 99)

	roles, err := g.MemberRoles(t.Context(), 7)
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{100, 200}, roles)

	names, err := g.RoleNames(t.Context(), []snowflake.ID{100, 300})
	require.NoError(t, err)
	assert.Equal(t, []string{"Protection"}, names)
}

func TestMemberChanges(t *testing.T) {
	t.Parallel()

	client := newFake()
	g := guild.New(client, 99)

	require.NoError(t, g.AddRole(t.Context(), 7, 300))
	require.NoError(t, g.RemoveRole(t.Context(), 7, 200))
	require.NoError(t, g.SetNickname(t.Context(), 7, "[PFC] Ghost"))

	assert.Equal(t, []snowflake.ID{300}, client.added)
	assert.Equal(t, []snowflake.ID{200}, client.removed)
	assert.Equal(t, "[PFC] Ghost", client.nicks[7])
}

func TestErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	client := newFake()
	client.err = errors.New("missing access")
	g := guild.New(client, 99)

	_, err := g.OwnerID(t.Context())
	require.ErrorIs(t, err, client.err)

	err = g.SetNickname(t.Context(), 7, "x")
	require.ErrorIs(t, err, client.err)
	assert.Contains(t, err.Error(), "failed to set nickname")
}
