package notify

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrNotReady is returned while the platform session has not completed its handshake.
	ErrNotReady = errors.New("platform session is not ready")
	// ErrChannelNotFound is returned when the destination channel cannot be resolved.
	ErrChannelNotFound = errors.New("channel not found")
)

// MessageType classifies an alert's severity. It only affects which reaction
// markers are attached after delivery.
type MessageType string

const (
	CriticalAlert     MessageType = "CRITICAL_ALERT"
	HighPriorityAlert MessageType = "HIGH_PRIORITY_ALERT"
	HealthyStatus     MessageType = "HEALTHY_STATUS"
)

// Reactions returns the markers attached for the message type, in attach order.
func (t MessageType) Reactions() []string {
	switch t {
	case CriticalAlert:
		return []string{"🚨", "👀"}
	case HighPriorityAlert:
		return []string{"⚠️"}
	case HealthyStatus:
		return []string{"✅"}
	default:
		return nil
	}
}

// AlertRequest is the body accepted by the alert endpoint.
type AlertRequest struct {
	ChannelID   string        `json:"channel_id"`
	Payload     *AlertPayload `json:"payload"`
	MessageType MessageType   `json:"message_type,omitempty"`
	Source      string        `json:"source,omitempty"`
}

// AlertPayload is the platform-neutral message description.
type AlertPayload struct {
	Content *string           `json:"content,omitempty"`
	Embeds  []EmbedDescriptor `json:"embeds,omitempty"`
}

type EmbedDescriptor struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Color       *int         `json:"color,omitempty"`
	Timestamp   *string      `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// Validate checks required fields in the order clients see them reported.
func (r *AlertRequest) Validate() error {
	if r.ChannelID == "" {
		return &ValidationError{Field: "channel_id"}
	}
	if r.Payload == nil {
		return &ValidationError{Field: "payload"}
	}
	return nil
}

// Identity describes the authenticated bot account.
type Identity struct {
	ID         string
	Username   string
	Tag        string
	GuildCount int
}

// Platform is the chat platform session the relay delivers through.
type Platform interface {
	// Ready reports whether the session handshake has completed.
	Ready() bool

	// Channel resolves a channel by ID.
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)

	// Send posts a message to a channel.
	Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)

	// React attaches an emoji reaction to a delivered message.
	React(ctx context.Context, channelID, messageID, emoji string) error

	// Identity returns the bot account and joined guild count.
	Identity() Identity
}

// Discord JSON error codes the relay distinguishes.
const (
	CodeUnknownChannel     = 10003
	CodeMissingPermissions = 50013
	CodeInvalidFormBody    = 50035
)

// ErrorCode extracts the Discord JSON error code from err, if any.
func ErrorCode(err error) (int, bool) {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code, true
	}
	return 0, false
}
