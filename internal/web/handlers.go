package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/makt28/alertrelay/internal/notify"
)

// isoLayout matches the millisecond ISO-8601 form clients of the relay expect.
const isoLayout = "2006-01-02T15:04:05.000Z"

// Handlers serves the alert relay endpoints.
type Handlers struct {
	relay        *notify.Relay
	metrics      *Metrics
	maxBodyBytes int64
}

func NewHandlers(relay *notify.Relay, metrics *Metrics, maxBodyBytes int64) *Handlers {
	return &Handlers{relay: relay, metrics: metrics, maxBodyBytes: maxBodyBytes}
}

type alertResponse struct {
	Success       bool   `json:"success"`
	MessageID     string `json:"message_id"`
	ChannelID     string `json:"channel_id"`
	MessageType   string `json:"message_type"`
	Timestamp     string `json:"timestamp"`
	ReactionError string `json:"reaction_error,omitempty"`
}

// SendAlert relays one alert to its destination channel.
func (h *Handlers) SendAlert(w http.ResponseWriter, r *http.Request) {
	var req notify.AlertRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		h.metrics.alert(req.MessageType, "invalid")
		respondError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	d, err := h.relay.Deliver(r.Context(), req)
	if err != nil {
		h.metrics.alert(req.MessageType, "failed")
		respondPlatformError(w, r, err)
		return
	}

	resp := alertResponse{
		Success:     true,
		MessageID:   d.Message.ID,
		ChannelID:   d.ChannelID,
		MessageType: string(req.MessageType),
		Timestamp:   messageTime(d.Message.Timestamp),
	}
	if d.ReactionErr != nil {
		h.metrics.reactionFailed(d.ReactionErr.Emoji)
		resp.ReactionError = d.ReactionErr.Error()
	}
	h.metrics.alert(req.MessageType, "delivered")
	writeJSON(w, http.StatusOK, resp)
}

// SendTest posts a plain test message. Every failure is reported as a 500.
func (h *Handlers) SendTest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if req.ChannelID == "" {
		respondError(w, http.StatusInternalServerError, "channel_id is required", "")
		return
	}

	msg, err := h.relay.SendTest(r.Context(), req.ChannelID, req.Message)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if msg == nil {
		respondError(w, http.StatusInternalServerError, "platform returned no message", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message_id": msg.ID,
		"test":       true,
	})
}

// decode reads a size-limited JSON body into v, answering the request itself
// when that fails. The body must hold exactly one JSON value.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		// an empty body is left to field validation
		return true
	}
	if err == nil {
		var extra json.RawMessage
		if err = dec.Decode(&extra); errors.Is(err, io.EOF) {
			return true
		}
		if err == nil {
			err = errors.New("unexpected data after JSON body")
		}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "Request body too large", "")
		return false
	}
	respondError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
	return false
}

func messageTime(ts time.Time) string {
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.UTC().Format(isoLayout)
}
