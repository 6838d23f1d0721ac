package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

// DiscordSession is the process-wide gateway session to Discord. It is created
// once at startup and shared by every request.
type DiscordSession struct {
	session *discordgo.Session
	ready   atomic.Bool
}

// NewDiscordSession creates a bot session for token. The session is not
// connected until Open is called.
func NewDiscordSession(token string) (*DiscordSession, error) {
	if token == "" {
		return nil, errors.New("discord: token is required")
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	// discordgo sleeps through a 429 before retrying and ignores the request
	// context while doing so. Fail the call instead so PLATFORM_TIMEOUT holds.
	s.ShouldRetryOnRateLimit = false

	d := &DiscordSession{session: s}
	s.AddHandler(d.onReady)
	s.AddHandler(d.onResumed)
	s.AddHandler(d.onDisconnect)
	return d, nil
}

// Open connects to the gateway and authenticates. It fails when the token is
// rejected.
func (d *DiscordSession) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (d *DiscordSession) Close() error {
	d.ready.Store(false)
	if err := d.session.Close(); err != nil {
		return fmt.Errorf("discord: close session: %w", err)
	}
	return nil
}

func (d *DiscordSession) Ready() bool { return d.ready.Load() }

func (d *DiscordSession) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	return d.session.Channel(channelID, discordgo.WithContext(ctx))
}

func (d *DiscordSession) Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return d.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
}

func (d *DiscordSession) React(ctx context.Context, channelID, messageID, emoji string) error {
	return d.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (d *DiscordSession) Identity() Identity {
	state := d.session.State
	state.RLock()
	defer state.RUnlock()

	var id Identity
	if state.User != nil {
		id.ID = state.User.ID
		id.Username = state.User.Username
		id.Tag = state.User.String()
	}
	id.GuildCount = len(state.Guilds)
	return id
}

func (d *DiscordSession) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	d.ready.Store(true)
	user := ""
	if r.User != nil {
		user = r.User.String()
	}
	slog.Info("discord session ready", "user", user, "guilds", len(r.Guilds))
}

func (d *DiscordSession) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	d.ready.Store(true)
	slog.Info("discord session resumed")
}

func (d *DiscordSession) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	if d.ready.Swap(false) {
		slog.Warn("discord session disconnected, waiting for reconnect")
	}
}
