package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/makt28/alertrelay/internal/notify"
	"github.com/makt28/alertrelay/internal/notify/notifytest"
	"github.com/makt28/alertrelay/internal/web"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	for _, ready := range []bool{true, false} {
		p := notifytest.New()
		p.IsReady = ready

		rr := do(t, newRouter(p), http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rr.Code)

		body := decode(t, rr)
		require.Equal(t, "healthy", body["status"])
		if ready {
			require.Equal(t, "online", body["bot_status"])
		} else {
			require.Equal(t, "offline", body["bot_status"])
		}
		require.GreaterOrEqual(t, body["uptime"].(float64), 0.0)
		require.NotEmpty(t, body["timestamp"])
	}
}

func TestInfo_NotReady(t *testing.T) {
	p := notifytest.New()
	p.IsReady = false

	rr := do(t, newRouter(p), http.MethodGet, "/api/info", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, map[string]interface{}{"error": "Bot not ready"}, decode(t, rr))
}

func TestInfo_Ready(t *testing.T) {
	p := notifytest.New()
	p.Ident = notify.Identity{ID: "42", Username: "alertbot", Tag: "alertbot#0001", GuildCount: 3}

	rr := do(t, newRouter(p), http.MethodGet, "/api/info", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	require.Equal(t, "42", body["bot_id"])
	require.Equal(t, "alertbot", body["bot_username"])
	require.Equal(t, "alertbot#0001", body["bot_tag"])
	require.Equal(t, float64(3), body["guild_count"])
	require.Equal(t, true, body["online"])
	require.Contains(t, body, "uptime_seconds")
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newRouter(notifytest.New())

	req := httptest.NewRequest(http.MethodOptions, "/api/alerts", nil)
	req.Header.Set("Origin", "https://grafana.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Less(t, rr.Code, 300)
	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_UnknownRouteIsJSON(t *testing.T) {
	rr := do(t, newRouter(notifytest.New()), http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, map[string]interface{}{"error": "Not found"}, decode(t, rr))

	rr = do(t, newRouter(notifytest.New()), http.MethodGet, "/api/alerts", "")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	require.Equal(t, "Method not allowed", decode(t, rr)["error"])
}

func TestRouter_Metrics(t *testing.T) {
	p := notifytest.New()
	p.AddChannel("c1")
	h := web.NewRouter(web.Options{Platform: p, Metrics: web.NewMetrics()})

	rr := do(t, h, http.MethodPost, "/api/alerts", validAlert)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodPost, "/api/alerts", `{"channel_id":"c1","payload":{"content":"x"},"message_type":"SOMETHING"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	b, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	out := string(b)

	require.True(t, strings.Contains(out, `alertrelay_alerts_total{message_type="CRITICAL_ALERT",result="delivered"} 1`), out)
	require.True(t, strings.Contains(out, `alertrelay_alerts_total{message_type="other",result="delivered"} 1`), out)
	require.True(t, strings.Contains(out, `alertrelay_http_requests_total{code="200",route="/api/alerts"} 2`), out)
}
