package promotion_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tf416/rosterbot/internal/promotion"
	"github.com/tf416/rosterbot/internal/rolesync"
	"github.com/tf416/rosterbot/internal/rolesync/guildtest"
	"github.com/tf416/rosterbot/internal/roster"
	"github.com/tf416/rosterbot/internal/roster/rostertest"
	"go.uber.org/zap"
)

func TestTableCheck(t *testing.T) {
	t.Parallel()

	table := promotion.DefaultTable()

	tests := []struct {
		name  string
		total int
		rank  roster.Rank
		want  promotion.Eligibility
	}{
		{
			name:  "below threshold",
			total: 9,
			rank:  roster.E1,
			want:  promotion.Eligibility{From: roster.E1, To: roster.E2, Threshold: 10},
		},
		{
			name:  "at threshold",
			total: 10,
			rank:  roster.E1,
			want:  promotion.Eligibility{Eligible: true, From: roster.E1, To: roster.E2, Threshold: 10},
		},
		{
			name:  "E3 to E4",
			total: 75,
			rank:  roster.E3,
			want:  promotion.Eligibility{Eligible: true, From: roster.E3, To: roster.E4, Threshold: 60},
		},
		{
			name:  "E4 needs application",
			total: 100,
			rank:  roster.E4,
			want:  promotion.Eligibility{Eligible: true, From: roster.E4, To: roster.E5, Threshold: 100, NeedsApplication: true},
		},
		{
			name:  "no tier above E5",
			total: 1000,
			rank:  roster.E5,
			want:  promotion.Eligibility{From: roster.E5},
		},
		{
			name:  "unknown rank",
			total: 1000,
			rank:  roster.RankUnknown,
			want:  promotion.Eligibility{From: roster.RankUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, table.Check(tt.total, tt.rank))
		})
	}
}

func TestTableWithThresholds(t *testing.T) {
	t.Parallel()

	base := promotion.DefaultTable()
	table := base.WithThresholds(map[string]int{"E1": 20, "E7": 5, "bogus": 1, "E2": 0})

	assert.Equal(t, 20, table[roster.E1].Threshold)
	assert.Equal(t, 30, table[roster.E2].Threshold, "zero keeps the default")
	assert.NotContains(t, table, roster.E7)
	assert.Equal(t, 10, base[roster.E1].Threshold, "original table is untouched")
}

type fixture struct {
	engine *promotion.Engine
	sheet  *rostertest.Sheet
	guild  *guildtest.Guild
	roster *roster.Roster
}

func newFixture(t *testing.T, rows ...[]any) *fixture {
	t.Helper()

	sheet := rostertest.NewSheet(4, rows...)
	r := roster.New(sheet, roster.DefaultLayout(), nil, zap.NewNop())
	guild := guildtest.New(1)
	syncer := rolesync.NewSyncer(guild, r, map[string]uint64{"E1": 11, "E2": 12, "E3": 13, "E4": 14}, 99, zap.NewNop())

	return &fixture{
		engine: promotion.NewEngine(r, syncer, promotion.DefaultTable(), 5, zap.NewNop()),
		sheet:  sheet,
		guild:  guild,
		roster: r,
	}
}

func TestAwardPromotes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rostertest.MemberRow("Alpha", "", "E1", 8, "500", false, "N/A"))
	guildUser := snowflake.ID(500)
	f.guild.Roles[guildUser] = []snowflake.ID{11}
	layout := roster.DefaultLayout()

	m, err := f.roster.FindByUsername(t.Context(), "Alpha")
	require.NoError(t, err)

	outcome, err := f.engine.Award(t.Context(), m, 2, true)
	require.NoError(t, err)

	assert.Equal(t, 10, outcome.Awarded)
	assert.Equal(t, 8, outcome.Previous)
	assert.Equal(t, 18, outcome.Total)
	assert.Equal(t, []roster.Rank{roster.E2}, outcome.Promotions)
	assert.True(t, outcome.Promoted())
	assert.Nil(t, outcome.Pending)

	assert.Equal(t, "18", f.sheet.Cell(4, layout.Points))
	assert.Equal(t, "TRUE", f.sheet.Cell(4, layout.Activity))
	assert.Equal(t, "E2", f.sheet.Cell(4, layout.Rank))
	assert.True(t, f.guild.HasRole(guildUser, 12))
	assert.False(t, f.guild.HasRole(guildUser, 11))
	assert.Equal(t, "[PV2] Alpha", f.guild.Nickname(guildUser))
}

func TestAwardClimbsSeveralTiers(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rostertest.MemberRow("Alpha", "", "E1", 0, "500", false, "N/A"))

	m, err := f.roster.FindByUsername(t.Context(), "Alpha")
	require.NoError(t, err)

	outcome, err := f.engine.Award(t.Context(), m, 21, true)
	require.NoError(t, err)

	assert.Equal(t, 105, outcome.Total)
	assert.Equal(t, []roster.Rank{roster.E2, roster.E3, roster.E4}, outcome.Promotions)
	require.NotNil(t, outcome.Pending)
	assert.Equal(t, roster.E5, outcome.Pending.To)
	assert.Equal(t, roster.E4, m.Rank, "application tiers are not applied automatically")
}

func TestAwardWithoutActivityFlag(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rostertest.MemberRow("Alpha", "", "E2", 12, "500", false, "LoA"))

	m, err := f.roster.FindByUsername(t.Context(), "Alpha")
	require.NoError(t, err)

	_, err = f.engine.Award(t.Context(), m, 1, false)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", f.sheet.Cell(4, roster.DefaultLayout().Activity))
	assert.Equal(t, "17", f.sheet.Cell(4, roster.DefaultLayout().Points))
}

func TestAwardFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rostertest.MemberRow("Alpha", "", "E1", 8, "500", false, "N/A"))

	m, err := f.roster.FindByUsername(t.Context(), "Alpha")
	require.NoError(t, err)

	f.sheet.Err = errors.New("sheet down")

	_, err = f.engine.Award(t.Context(), m, 2, true)
	require.Error(t, err)
	assert.Equal(t, 8, m.Points)
	assert.Equal(t, roster.E1, m.Rank)

	_, err = f.engine.Award(t.Context(), m, -1, true)
	require.ErrorIs(t, err, promotion.ErrNegativeHours)
}

func TestAdjust(t *testing.T) {
	t.Parallel()

	t.Run("add promotes a new recruit", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, rostertest.MemberRow("Alpha", "", "E1", 0, "500", false, "N/A"))
		guildUser := snowflake.ID(500)
		f.guild.Roles[guildUser] = []snowflake.ID{11}

		m, err := f.roster.FindByDiscordID(t.Context(), "500")
		require.NoError(t, err)

		outcome, err := f.engine.Adjust(t.Context(), m, 20)
		require.NoError(t, err)
		assert.Equal(t, 20, outcome.Total)
		assert.Equal(t, []roster.Rank{roster.E2}, outcome.Promotions)
		assert.Equal(t, roster.E2, m.Rank)
		assert.Equal(t, "20", f.sheet.Cell(4, roster.DefaultLayout().Points))
		assert.Equal(t, "E2", f.sheet.Cell(4, roster.DefaultLayout().Rank))
		assert.True(t, f.guild.HasRole(guildUser, 12))
		assert.Equal(t, "[PV2] Alpha", f.guild.Nickname(guildUser))
	})

	t.Run("add evaluates promotion", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, rostertest.MemberRow("Alpha", "", "E2", 25, "500", false, "N/A"))
		m, err := f.roster.FindByUsername(t.Context(), "Alpha")
		require.NoError(t, err)

		outcome, err := f.engine.Adjust(t.Context(), m, 10)
		require.NoError(t, err)
		assert.Equal(t, 35, outcome.Total)
		assert.Equal(t, []roster.Rank{roster.E3}, outcome.Promotions)
		assert.Equal(t, "E3", f.sheet.Cell(4, roster.DefaultLayout().Rank))
	})

	t.Run("remove clamps at zero", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, rostertest.MemberRow("Alpha", "", "E2", 7, "500", false, "N/A"))
		m, err := f.roster.FindByUsername(t.Context(), "Alpha")
		require.NoError(t, err)

		outcome, err := f.engine.Adjust(t.Context(), m, -20)
		require.NoError(t, err)
		assert.Equal(t, 0, outcome.Total)
		assert.Equal(t, -7, outcome.Awarded)
		assert.Empty(t, outcome.Promotions)
		assert.Equal(t, "0", f.sheet.Cell(4, roster.DefaultLayout().Points))
	})

	t.Run("remove never promotes", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, rostertest.MemberRow("Alpha", "", "E1", 50, "500", false, "N/A"))
		m, err := f.roster.FindByUsername(t.Context(), "Alpha")
		require.NoError(t, err)

		outcome, err := f.engine.Adjust(t.Context(), m, -1)
		require.NoError(t, err)
		assert.Empty(t, outcome.Promotions)
		assert.Equal(t, roster.E1, m.Rank)
	})
}

func TestConcurrentAwardAndAdjust(t *testing.T) {
	t.Parallel()

	f := newFixture(t, rostertest.MemberRow("Alpha", "", "E2", 12, "500", false, "N/A"))
	f.sheet.Delay = 50 * time.Millisecond

	// Each caller resolves its own copy, as separate event handlers do.
	award, err := f.roster.FindByUsername(t.Context(), "Alpha")
	require.NoError(t, err)
	adjust, err := f.roster.FindByUsername(t.Context(), "Alpha")
	require.NoError(t, err)

	var (
		wg                  sync.WaitGroup
		awardErr, adjustErr error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		_, awardErr = f.engine.Award(t.Context(), award, 1, true)
	}()

	go func() {
		defer wg.Done()
		_, adjustErr = f.engine.Adjust(t.Context(), adjust, 3)
	}()

	wg.Wait()

	require.NoError(t, awardErr)
	require.NoError(t, adjustErr)
	assert.Equal(t, "20", f.sheet.Cell(4, roster.DefaultLayout().Points))
}
