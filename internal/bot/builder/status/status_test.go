package status_test

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tf416/rosterbot/internal/bot/builder/status"
	"github.com/tf416/rosterbot/internal/roster"
	"github.com/tf416/rosterbot/internal/shift"
)

var now = time.Date(2026, 5, 3, 18, 0, 0, 0, time.UTC)

func session(id uint64, name string, rank roster.Rank, ago time.Duration) shift.Session {
	return shift.Session{
		UserID:   snowflake.ID(id),
		Username: name,
		Rank:     rank,
		Zone:     shift.Zone{Name: "UTC"},
		Start:    now.Add(-ago),
	}
}

func TestRoles(t *testing.T) {
	t.Parallel()

	commander, operatives := status.Roles([]shift.Session{
		session(1, "Lead", roster.E6, time.Hour),
		session(2, "Second", roster.E5, time.Hour),
		session(3, "Third", roster.E2, time.Hour),
	})
	require.NotNil(t, commander)
	assert.Equal(t, "Lead", commander.Username)
	assert.Len(t, operatives, 2)

	commander, operatives = status.Roles([]shift.Session{session(3, "Third", roster.E4, time.Hour)})
	assert.Nil(t, commander)
	assert.Len(t, operatives, 1)

	commander, operatives = status.Roles(nil)
	assert.Nil(t, commander)
	assert.Empty(t, operatives)
}

func TestBoardEmbed(t *testing.T) {
	t.Parallel()

	embed := status.NewBuilder([]shift.Session{
		session(1, "Lead", roster.E5, 65*time.Minute),
		session(2, "Grunt", roster.E1, 10*time.Minute),
	}, now).Embed()

	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Commander", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "[SGT] Lead • 1h 05m (UTC)")
	assert.Equal(t, "Operatives (1)", embed.Fields[1].Name)
	assert.Contains(t, embed.Fields[1].Value, "[PVT] Grunt • 0h 10m")

	idle := status.NewBuilder(nil, now).Embed()
	assert.Equal(t, "No one is currently on duty.", idle.Description)
	assert.Empty(t, idle.Fields)
}

func TestDeployNotice(t *testing.T) {
	t.Parallel()

	caller := session(1, "Lead", roster.E5, time.Hour)
	msg := status.NewDeployBuilder(caller, "Raid at the gate", []shift.Session{
		caller,
		session(2, "Grunt", roster.E1, time.Minute),
	}, now).Build().Build()

	require.Len(t, msg.Embeds, 1)
	embed := msg.Embeds[0]
	assert.Equal(t, "Raid at the gate", embed.Description)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "<@1> ([SGT] Lead)", embed.Fields[0].Value)
	assert.Equal(t, "Online (2)", embed.Fields[1].Name)
	assert.Equal(t, "<@1>, <@2>", embed.Fields[1].Value)
}
