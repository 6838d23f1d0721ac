package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

const DefaultTestMessage = "🧪 Test message from the alert relay"

// Delivery is the outcome of a relayed alert. The message was delivered
// whenever a Delivery is returned; ReactionErr only describes the follow-up
// reaction stage.
type Delivery struct {
	Message     *discordgo.Message
	ChannelID   string
	Reacted     []string
	ReactionErr *ReactionError
}

// ReactionError reports the first reaction that could not be attached.
// Reactions after it are not attempted.
type ReactionError struct {
	Emoji string
	Err   error
}

func (e *ReactionError) Error() string {
	return fmt.Sprintf("attach reaction %s: %v", e.Emoji, e.Err)
}

func (e *ReactionError) Unwrap() error { return e.Err }

// Relay delivers alerts through a Platform, bounding every platform call by
// a per-call timeout.
type Relay struct {
	platform Platform
	timeout  time.Duration
}

// NewRelay creates a relay. A non-positive timeout disables the per-call bound.
func NewRelay(platform Platform, timeout time.Duration) *Relay {
	return &Relay{platform: platform, timeout: timeout}
}

// Deliver resolves the channel, translates the payload, sends it and then
// attaches the severity reactions in order. The request must already be
// validated.
func (r *Relay) Deliver(ctx context.Context, req AlertRequest) (*Delivery, error) {
	if !r.platform.Ready() {
		return nil, ErrNotReady
	}

	channel, err := r.channel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}

	msg, err := Translate(*req.Payload)
	if err != nil {
		return nil, err
	}

	sent, err := r.send(ctx, channel.ID, msg)
	if err != nil {
		return nil, err
	}
	if sent == nil {
		return nil, errors.New("platform returned no message")
	}

	d := &Delivery{Message: sent, ChannelID: channel.ID}
	for _, emoji := range req.MessageType.Reactions() {
		if err := r.react(ctx, channel.ID, sent.ID, emoji); err != nil {
			d.ReactionErr = &ReactionError{Emoji: emoji, Err: err}
			slog.Warn("reaction failed, message was delivered",
				"channel_id", channel.ID,
				"message_id", sent.ID,
				"emoji", emoji,
				"error", err,
			)
			break
		}
		d.Reacted = append(d.Reacted, emoji)
	}

	slog.Info("alert relayed",
		"message_type", string(req.MessageType),
		"channel_id", channel.ID,
		"message_id", sent.ID,
		"source", req.Source,
	)
	return d, nil
}

// SendTest posts a plain text message, falling back to DefaultTestMessage.
func (r *Relay) SendTest(ctx context.Context, channelID, text string) (*discordgo.Message, error) {
	if text == "" {
		text = DefaultTestMessage
	}
	channel, err := r.channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return r.send(ctx, channel.ID, &discordgo.MessageSend{Content: text})
}

func (r *Relay) channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	ctx, cancel := r.callContext(ctx)
	defer cancel()

	ch, err := r.platform.Channel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChannelNotFound, err)
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

func (r *Relay) send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	ctx, cancel := r.callContext(ctx)
	defer cancel()
	return r.platform.Send(ctx, channelID, msg)
}

func (r *Relay) react(ctx context.Context, channelID, messageID, emoji string) error {
	ctx, cancel := r.callContext(ctx)
	defer cancel()
	return r.platform.React(ctx, channelID, messageID, emoji)
}

func (r *Relay) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
