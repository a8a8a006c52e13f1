// Package reply holds the plain-text replies the bot posts.
package reply

import (
	"fmt"
	"strings"

	"github.com/tf416/rosterbot/internal/activity"
	"github.com/tf416/rosterbot/internal/bot/utils"
	"github.com/tf416/rosterbot/internal/promotion"
	"github.com/tf416/rosterbot/internal/roster"
	"github.com/tf416/rosterbot/internal/shift"
)

const logFormat = "```\n" +
	"Start time: xx:xx (timezone)\n" +
	"End time: xx:xx (timezone)\n" +
	"Total time: xx hours xx mins\n" +
	"Proof:\n" +
	"```"

const (
	MissingProof = "❌ **Missing Proof Image**\n\n" +
		"Your activity log must include an **image attachment** as proof of your activity.\n" +
		"Please resubmit your log with a screenshot or photo attached to verify your time.\n\n" +
		"**Required format:**\n" + logFormat + "\n" +
		"+ **Image attachment required**"

	BadTotalTime = "❌ **Error: Your `Total time:` line is incorrect.**\n" +
		"Please check the format and try again. A correctly formatted log should look like this:\n" +
		"`Total time: x hour xx mins`\n" +
		"`Total time: x hour(s)`\n" +
		"`Total time: xx mins`"

	BadMinutes = "❌ **Error:** The minutes value must be between 00 and 59."

	BelowMinimum = "✅ Logged! Please note that this log does not meet the minimum requirement of 1 hour " +
		"and will not be counted towards points."

	NotOnRoster = "❌ **Error:** Could not find your Discord ID in the roster."

	LOAFailed = "❌ **Error:** Failed to update LOA status in spreadsheet."

	LOARemoved = "✅ **LOA Status Removed**"

	ResetDone = "✅ **Weekly reset completed!** All activity checkboxes have been reset."

	Generic = "⚠ **Error:** Something went wrong while talking to the roster. Please try again later."

	NoPermission = "❌ You do not have permission to use this command."

	AlreadyClockedIn = "❌ You are already clocked in. Use `/clockout` first."

	NotClockedIn = "❌ You are not clocked in."

	ProofFailed = "⚠ Could not repost your proof. Please post your log manually."
)

// Welcome is posted in a new forum thread.
func Welcome(username string) string {
	return fmt.Sprintf("👋 Welcome **%s**! Post your activity logs in this thread using the format below "+
		"and attach a screenshot as proof.\n\n%s", username, logFormat)
}

// ActivityLogged summarises an approved log.
func ActivityLogged(r *activity.Result, formURL string) string {
	var b strings.Builder

	b.WriteString("✅ **Activity Logged Successfully!**\n")
	fmt.Fprintf(&b, "• Time logged: %s\n", r.Time)

	if r.Outcome != nil {
		fmt.Fprintf(&b, "• Points awarded: %d points\n", r.Outcome.Awarded)
		fmt.Fprintf(&b, "• Total points: %d points", r.Outcome.Total)
	}

	if r.OnLOA {
		b.WriteString("\n• **Note:** You are on LOA - points awarded but activity not counted")
	} else if r.Outcome != nil {
		b.WriteString(promotionLines(r.Outcome, formURL))
	}

	return b.String()
}

// PointsAdjusted summarises a staff points change.
// A removal that hits zero still reports the requested amount.
func PointsAdjusted(o *promotion.Outcome, delta int, display, username, formURL string) string {
	var b strings.Builder

	if delta >= 0 {
		b.WriteString("✅ **Points Added!**\n")
		fmt.Fprintf(&b, "• Added **%d points** to **%s** (%s)\n", delta, display, username)
	} else {
		b.WriteString("✅ **Points Removed!**\n")
		fmt.Fprintf(&b, "• Removed **%d points** from **%s** (%s)\n", -delta, display, username)
	}

	fmt.Fprintf(&b, "• Previous total: %d points\n", o.Previous)
	fmt.Fprintf(&b, "• New total: %d points", o.Total)
	b.WriteString(promotionLines(o, formURL))

	return b.String()
}

// Points answers /points.
func Points(username string, points int, self bool) string {
	if self {
		return fmt.Sprintf("You have **%d points**", points)
	}

	return fmt.Sprintf("**%s** has **%d points**", username, points)
}

// MemberNotFound reports a failed roster lookup.
func MemberNotFound(name string) string {
	return fmt.Sprintf("❌ **Error:** Could not find '%s' in the roster spreadsheet.", name)
}

// PromotionNotice is posted to the notifier channel.
func PromotionNotice(userID, username string, to roster.Rank) string {
	if userID == "" {
		return fmt.Sprintf("🎖️ **%s** has been promoted to **%s**!", username, to)
	}

	return fmt.Sprintf("🎖️ <@%s> (**%s**) has been promoted to **%s**!", userID, username, to)
}

// ClockedIn confirms a clock-in.
func ClockedIn(s shift.Session) string {
	return fmt.Sprintf("🟢 Clocked in at **%s** (%s).",
		s.Start.In(s.Zone.Location()).Format("15:04"), s.Zone.Name)
}

// ClockedOut confirms a clock-out and asks for proof.
func ClockedOut(p shift.Proof, timeout string) string {
	return fmt.Sprintf("🔴 Clocked out after **%s**.\nPost a screenshot in your activity thread within %s "+
		"and your log will be filled in for you.", shift.FormatElapsed(p.Elapsed), timeout)
}

// Elapsed answers /time.
func Elapsed(s shift.Session, elapsed string) string {
	return fmt.Sprintf("⏱️ You have been clocked in for **%s** (since %s %s).",
		elapsed, s.Start.In(s.Zone.Location()).Format("15:04"), s.Zone.Name)
}

// UnknownTimezone rejects a /clockin timezone.
func UnknownTimezone(name string) string {
	return fmt.Sprintf("❌ Unknown timezone `%s`. Use a name such as `EST` or an offset such as `GMT+2`.",
		utils.NormalizeString(name))
}

// Deployed confirms a /deploy notice.
func Deployed(channelID string) string {
	return fmt.Sprintf("📣 Deployment announced in <#%s>.", channelID)
}

func promotionLines(o *promotion.Outcome, formURL string) string {
	var b strings.Builder

	for _, rank := range o.Promotions {
		fmt.Fprintf(&b, "\n• **🎖️ Promoted:** You are now **%s**", rank)
	}

	if o.Pending != nil {
		fmt.Fprintf(&b, "\n• **🎖️ Promotion Available:** Eligible for **%s**", o.Pending.To)

		if o.Pending.NeedsApplication && formURL != "" {
			fmt.Fprintf(&b, "\n• Please complete the MR Ascension form: %s to be eligible for **%s**", formURL, o.Pending.To)
		}
	}

	return b.String()
}
