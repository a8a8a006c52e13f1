package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tf416/rosterbot/pkg/utils"
)

func TestFoldName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "JohnDoe", want: "johndoe"},
		{name: "strips accents", input: "Jöhn", want: "john"},
		{name: "trims and compresses spaces", input: "  John   Doe ", want: "john doe"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, utils.FoldName(tt.input))
		})
	}
}

func TestSameName(t *testing.T) {
	t.Parallel()

	assert.True(t, utils.SameName("Alpha", "alpha "))
	assert.False(t, utils.SameName("Alpha", "Bravo"))
	assert.False(t, utils.SameName("", ""))
}

func TestTrimQuotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: `"Ghost"`, want: "Ghost"},
		{input: "“Ghost”", want: "Ghost"},
		{input: `Ghost`, want: "Ghost"},
		{input: `"`, want: `"`},
		{input: ` " Ghost " `, want: "Ghost"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, utils.TrimQuotes(tt.input))
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", utils.TruncateRunes("abcdef", 3))
	assert.Equal(t, "ab", utils.TruncateRunes("ab", 3))
	assert.Equal(t, "", utils.TruncateRunes("ab", 0))
	assert.Equal(t, "éé", utils.TruncateRunes("ééé", 2))
}
