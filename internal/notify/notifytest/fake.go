// Package notifytest provides an in-memory notify.Platform for handler and
// relay tests.
package notifytest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/makt28/alertrelay/internal/notify"
)

// SentMessage records one Send call.
type SentMessage struct {
	ChannelID string
	Message   *discordgo.MessageSend
}

// Reaction records one React call.
type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// Platform is a fake notify.Platform. Channels must be registered with
// AddChannel before they resolve.
type Platform struct {
	mu sync.Mutex

	IsReady    bool
	Ident      notify.Identity
	ChannelErr error
	SendErr    error
	// ReactErr fails React for the given emoji.
	ReactErr map[string]error
	// Block makes every call wait for ctx to be done.
	Block bool
	// BlockSend makes only Send wait for ctx to be done.
	BlockSend bool

	channels  map[string]*discordgo.Channel
	sent      []SentMessage
	reactions []Reaction
	calls     int
	nextID    int
	deadlines []bool
}

var _ notify.Platform = (*Platform)(nil)

// New returns a ready fake platform with no channels.
func New() *Platform {
	return &Platform{
		IsReady:  true,
		ReactErr: make(map[string]error),
		channels: make(map[string]*discordgo.Channel),
	}
}

func (p *Platform) AddChannel(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[id] = &discordgo.Channel{ID: id, Type: discordgo.ChannelTypeGuildText}
}

func (p *Platform) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.IsReady
}

func (p *Platform) Identity() notify.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Ident
}

func (p *Platform) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if err := p.enter(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ChannelErr != nil {
		return nil, p.ChannelErr
	}
	ch, ok := p.channels[channelID]
	if !ok {
		return nil, RESTError(http.StatusNotFound, notify.CodeUnknownChannel, "Unknown Channel")
	}
	return ch, nil
}

func (p *Platform) Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	if err := p.enter(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	blockSend := p.BlockSend
	p.mu.Unlock()
	if blockSend {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SendErr != nil {
		return nil, p.SendErr
	}
	p.sent = append(p.sent, SentMessage{ChannelID: channelID, Message: msg})
	p.nextID++
	return &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", p.nextID),
		ChannelID: channelID,
		Content:   msg.Content,
		Embeds:    msg.Embeds,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (p *Platform) React(ctx context.Context, channelID, messageID, emoji string) error {
	if err := p.enter(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reactions = append(p.reactions, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return p.ReactErr[emoji]
}

// Calls is the number of Channel, Send and React calls made so far.
func (p *Platform) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *Platform) Sent() []SentMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SentMessage(nil), p.sent...)
}

// Emojis returns the attempted reactions in call order.
func (p *Platform) Emojis() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.reactions))
	for _, r := range p.reactions {
		out = append(out, r.Emoji)
	}
	return out
}

// Deadlines reports, per call, whether the context carried a deadline.
func (p *Platform) Deadlines() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.deadlines...)
}

func (p *Platform) enter(ctx context.Context) error {
	_, hasDeadline := ctx.Deadline()

	p.mu.Lock()
	p.calls++
	p.deadlines = append(p.deadlines, hasDeadline)
	block := p.Block
	p.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// RESTError builds the error discordgo returns for a rejected REST call.
func RESTError(status, code int, message string) *discordgo.RESTError {
	body := fmt.Sprintf(`{"message": %q, "code": %d}`, message, code)
	return &discordgo.RESTError{
		Response: &http.Response{
			Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
			StatusCode: status,
		},
		ResponseBody: []byte(body),
		Message:      &discordgo.APIErrorMessage{Code: code, Message: message},
	}
}
