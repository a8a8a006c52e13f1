package utils_test

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/tf416/rosterbot/internal/bot/utils"
)

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "short string", input: "hello", maxLength: 10, want: "hello"},
		{name: "long string", input: "hello world this is a long string", maxLength: 10, want: "hello w..."},
		{name: "exact length", input: "hello", maxLength: 5, want: "hello"},
		{name: "multibyte", input: "ééééééé", maxLength: 5, want: "éé..."},
		{name: "tiny limit", input: "hello", maxLength: 2, want: "he"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, utils.TruncateString(tt.input, tt.maxLength))
		})
	}
}

func TestFormatMentions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "None", utils.FormatMentions(nil))
	assert.Equal(t, "<@1>, <@22>", utils.FormatMentions([]snowflake.ID{1, 22}))
}

func TestNormalizeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", utils.NormalizeString("a\nb c"))
	assert.Equal(t, "code here", utils.NormalizeString("`code`\nhere"))
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "moments", utils.FormatDuration(30*time.Second))
	assert.Equal(t, "1 minute", utils.FormatDuration(time.Minute))
	assert.Equal(t, "5 minutes", utils.FormatDuration(5*time.Minute))
	assert.Equal(t, "2 hours", utils.FormatDuration(2*time.Hour+10*time.Minute))
	assert.Equal(t, "3 days", utils.FormatDuration(72*time.Hour))
	assert.Equal(t, "never", utils.FormatTimeAgo(time.Time{}))
	assert.Equal(t, "<t:0:R>", utils.DiscordTimestamp(time.Unix(0, 0), "R"))
}
