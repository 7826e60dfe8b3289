package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscord_Disabled(t *testing.T) {
	discord := &Discord{ChannelID: "123"}
	assert.False(t, discord.Enabled())

	require.NoError(t, discord.Init())

	// Neither of these may panic without a session
	discord.SendMessage("Started batch")
	discord.Close()
}

func TestDiscord_Format(t *testing.T) {
	discord := &Discord{}
	assert.Equal(t, "Started batch", discord.format("Started batch"))

	discord.Prefix = "simnet"
	assert.Equal(t, "simnet: Started batch", discord.format("Started batch"))
}
