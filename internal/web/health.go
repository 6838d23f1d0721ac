package web

import (
	"net/http"
	"time"

	"github.com/makt28/alertrelay/internal/notify"
)

var startTime = time.Now()

// HealthHandler serves the /health and /api/info endpoints.
type HealthHandler struct {
	platform notify.Platform
}

func NewHealthHandler(platform notify.Platform) *HealthHandler {
	return &HealthHandler{platform: platform}
}

// Health always answers 200; bot_status reflects the platform session.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	botStatus := "offline"
	if h.platform.Ready() {
		botStatus = "online"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"bot_status": botStatus,
		"uptime":     time.Since(startTime).Seconds(),
		"timestamp":  time.Now().UTC().Format(isoLayout),
	})
}

// Info describes the bot account once the session is ready.
func (h *HealthHandler) Info(w http.ResponseWriter, r *http.Request) {
	if !h.platform.Ready() {
		respondError(w, http.StatusServiceUnavailable, "Bot not ready", "")
		return
	}

	id := h.platform.Identity()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bot_id":         id.ID,
		"bot_username":   id.Username,
		"bot_tag":        id.Tag,
		"guild_count":    id.GuildCount,
		"online":         true,
		"uptime_seconds": int(time.Since(startTime).Seconds()),
	})
}
