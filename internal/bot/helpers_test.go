package bot

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestIsImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		attachment discord.Attachment
		want       bool
	}{
		{name: "content type", attachment: discord.Attachment{Filename: "shot", ContentType: strPtr("image/png")}, want: true},
		{name: "extension", attachment: discord.Attachment{Filename: "shot.JPG"}, want: true},
		{name: "video", attachment: discord.Attachment{Filename: "clip.mp4", ContentType: strPtr("video/mp4")}, want: false},
		{name: "text", attachment: discord.Attachment{Filename: "notes.txt"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isImage(tt.attachment))
		})
	}
}

func TestImageAttachments(t *testing.T) {
	t.Parallel()

	images := imageAttachments([]discord.Attachment{
		{Filename: "a.png"},
		{Filename: "b.txt"},
		{Filename: "c.webp"},
	})

	require.Len(t, images, 2)
	assert.Equal(t, "a.png", images[0].Filename)
	assert.Equal(t, "c.webp", images[1].Filename)
}

func TestSquadronFor(t *testing.T) {
	t.Parallel()

	squadrons := map[string]string{"Recon Squadron": "Recon", "Assault Squadron": "Assault"}

	assert.Equal(t, "Recon", squadronFor([]string{"E3", "Recon Squadron"}, squadrons, "Protection"))
	assert.Equal(t, "Protection", squadronFor([]string{"E3"}, squadrons, "Protection"))
	assert.Equal(t, "Protection", squadronFor(nil, nil, "Protection"))
}

func TestIsStaff(t *testing.T) {
	t.Parallel()

	assert.False(t, isStaff(nil, nil))

	manager := &discord.ResolvedMember{Permissions: discord.PermissionManageRoles}
	assert.True(t, isStaff(manager, nil))

	officer := &discord.ResolvedMember{Member: discord.Member{RoleIDs: []snowflake.ID{10, 20}}}
	assert.True(t, isStaff(officer, []uint64{20}))
	assert.False(t, isStaff(officer, []uint64{30}))
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	user := discord.User{Username: "ghost_1", GlobalName: strPtr("Ghost")}

	assert.Equal(t, "[PFC] Ghost", displayName(&discord.Member{Nick: strPtr("[PFC] Ghost")}, user))
	assert.Equal(t, "Ghost", displayName(&discord.Member{}, user))
	assert.Equal(t, "ghost_1", displayName(nil, discord.User{Username: "ghost_1"}))
}

func TestCommandsAreUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, cmd := range commands() {
		name := cmd.CommandName()
		assert.False(t, seen[name], "duplicate command %s", name)
		seen[name] = true
	}

	assert.Len(t, seen, 10)

	for _, name := range staffCommands {
		assert.True(t, seen[name], "staff command %s is not registered", name)
	}
}
