package notify

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Translate maps an alert payload onto a Discord message. Only fields present
// in the payload are set on the result.
func Translate(payload AlertPayload) (*discordgo.MessageSend, error) {
	msg := &discordgo.MessageSend{}

	if payload.Content != nil {
		msg.Content = *payload.Content
	}

	for i, d := range payload.Embeds {
		embed, err := translateEmbed(d)
		if err != nil {
			return nil, fmt.Errorf("embeds[%d]: %w", i, err)
		}
		msg.Embeds = append(msg.Embeds, embed)
	}

	return msg, nil
}

func translateEmbed(d EmbedDescriptor) (*discordgo.MessageEmbed, error) {
	embed := &discordgo.MessageEmbed{}

	if d.Title != nil {
		embed.Title = *d.Title
	}
	if d.Description != nil {
		embed.Description = *d.Description
	}
	// Color 0 is omitted on the wire, which Discord renders as no color.
	if d.Color != nil {
		embed.Color = *d.Color
	}
	if d.Timestamp != nil {
		ts, err := parseTimestamp(*d.Timestamp)
		if err != nil {
			return nil, err
		}
		embed.Timestamp = ts.UTC().Format(time.RFC3339Nano)
	}
	if d.Footer != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: d.Footer.Text}
	}
	for _, f := range d.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	return embed, nil
}

// Accepted ISO-8601 shapes, tried in order. Zone-less forms are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	norm := normalizeTimestamp(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, norm); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected ISO-8601", s)
}

// normalizeTimestamp folds a space or lowercase t date-time separator and a
// lowercase z zone into the upper-case forms time.Parse expects.
func normalizeTimestamp(s string) string {
	b := []byte(s)
	if len(b) > 10 && (b[10] == ' ' || b[10] == 't') {
		b[10] = 'T'
	}
	if n := len(b); n > 10 && b[n-1] == 'z' {
		b[n-1] = 'Z'
	}
	return string(b)
}
