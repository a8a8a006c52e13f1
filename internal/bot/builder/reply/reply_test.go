package reply_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tf416/rosterbot/internal/activity"
	"github.com/tf416/rosterbot/internal/bot/builder/reply"
	"github.com/tf416/rosterbot/internal/promotion"
	"github.com/tf416/rosterbot/internal/roster"
)

const formURL = "https://example.com/form"

func TestActivityLogged(t *testing.T) {
	t.Parallel()

	got := reply.ActivityLogged(&activity.Result{
		Time:    activity.TotalTime{Hours: 2, Minutes: 30},
		Outcome: &promotion.Outcome{Awarded: 10, Previous: 8, Total: 18, Promotions: []roster.Rank{roster.E2}},
	}, formURL)

	assert.Equal(t, "✅ **Activity Logged Successfully!**\n"+
		"• Time logged: 2 hours 30 mins\n"+
		"• Points awarded: 10 points\n"+
		"• Total points: 18 points\n"+
		"• **🎖️ Promoted:** You are now **E2**", got)
}

func TestActivityLoggedPendingApplication(t *testing.T) {
	t.Parallel()

	got := reply.ActivityLogged(&activity.Result{
		Time: activity.TotalTime{Hours: 3},
		Outcome: &promotion.Outcome{
			Awarded: 15, Previous: 90, Total: 105,
			Pending: &promotion.Eligibility{Eligible: true, From: roster.E4, To: roster.E5, NeedsApplication: true},
		},
	}, formURL)

	assert.Contains(t, got, "Eligible for **E5**")
	assert.Contains(t, got, formURL)
}

func TestActivityLoggedOnLOA(t *testing.T) {
	t.Parallel()

	got := reply.ActivityLogged(&activity.Result{
		Time:    activity.TotalTime{Hours: 1},
		OnLOA:   true,
		Outcome: &promotion.Outcome{Awarded: 5, Previous: 0, Total: 5, Promotions: []roster.Rank{roster.E2}},
	}, formURL)

	assert.True(t, strings.HasSuffix(got, "• **Note:** You are on LOA - points awarded but activity not counted"))
	assert.NotContains(t, got, "Promoted")
}

func TestPointsAdjusted(t *testing.T) {
	t.Parallel()

	added := reply.PointsAdjusted(&promotion.Outcome{Awarded: 5, Previous: 7, Total: 12, Promotions: []roster.Rank{roster.E2}}, 5,
		"[PVT] Alpha", "alpha", formURL)
	assert.Equal(t, "✅ **Points Added!**\n"+
		"• Added **5 points** to **[PVT] Alpha** (alpha)\n"+
		"• Previous total: 7 points\n"+
		"• New total: 12 points\n"+
		"• **🎖️ Promoted:** You are now **E2**", added)

	removed := reply.PointsAdjusted(&promotion.Outcome{Awarded: -3, Previous: 3, Total: 0}, -10, "Bravo", "bravo", formURL)
	assert.Contains(t, removed, "✅ **Points Removed!**")
	assert.Contains(t, removed, "Removed **10 points** from **Bravo**")
}

func TestPoints(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "You have **12 points**", reply.Points("Alpha", 12, true))
	assert.Equal(t, "**Alpha** has **12 points**", reply.Points("Alpha", 12, false))
}

func TestPromotionNotice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "🎖️ <@5> (**Alpha**) has been promoted to **E3**!", reply.PromotionNotice("5", "Alpha", roster.E3))
	assert.Equal(t, "🎖️ **Alpha** has been promoted to **E3**!", reply.PromotionNotice("", "Alpha", roster.E3))
}

func TestDeployed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "📣 Deployment announced in <#42>.", reply.Deployed("42"))
}

func TestUnknownTimezoneStripsBackticks(t *testing.T) {
	t.Parallel()

	assert.Contains(t, reply.UnknownTimezone("`EST`\n"), "`EST `")
}
