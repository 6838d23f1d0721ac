package notify

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func TestNewDiscordSession_RequiresToken(t *testing.T) {
	_, err := NewDiscordSession("")
	require.Error(t, err)
}

func TestNewDiscordSession_Config(t *testing.T) {
	d, err := NewDiscordSession("x")
	require.NoError(t, err)
	require.Equal(t, "Bot x", d.session.Identify.Token)
	require.Equal(t, discordgo.IntentsGuilds, d.session.Identify.Intents)
	require.False(t, d.session.ShouldRetryOnRateLimit)
	require.False(t, d.Ready())
}

func TestDiscordSession_ReadinessTransitions(t *testing.T) {
	d, err := NewDiscordSession("x")
	require.NoError(t, err)

	ready := &discordgo.Ready{
		User:   &discordgo.User{ID: "42", Username: "bot", Discriminator: "0"},
		Guilds: []*discordgo.Guild{{ID: "g1"}, {ID: "g2"}},
	}
	require.NoError(t, d.session.State.OnInterface(d.session, ready))

	d.onReady(d.session, ready)
	require.True(t, d.Ready())
	require.Equal(t, Identity{ID: "42", Username: "bot", Tag: "bot", GuildCount: 2}, d.Identity())

	d.onDisconnect(d.session, &discordgo.Disconnect{})
	require.False(t, d.Ready())

	// A second disconnect while already down stays down.
	d.onDisconnect(d.session, &discordgo.Disconnect{})
	require.False(t, d.Ready())

	d.onResumed(d.session, &discordgo.Resumed{})
	require.True(t, d.Ready())
	require.Equal(t, 2, d.Identity().GuildCount)
}

func TestDiscordSession_IdentityBeforeReady(t *testing.T) {
	d, err := NewDiscordSession("x")
	require.NoError(t, err)
	require.Equal(t, Identity{}, d.Identity())
}

func TestDiscordSession_CloseClearsReady(t *testing.T) {
	d, err := NewDiscordSession("x")
	require.NoError(t, err)

	d.onReady(d.session, &discordgo.Ready{User: &discordgo.User{ID: "42", Username: "bot"}})
	require.True(t, d.Ready())

	require.NoError(t, d.Close())
	require.False(t, d.Ready())
}
