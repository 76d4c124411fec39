// Package http serves the status page of the routing bot: a small HTML page,
// a JSON health check, Prometheus metrics and a websocket with live status events.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/models"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/status"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const wsWriteTimeout = 5 * time.Second

// Hub is the source of live status events.
type Hub interface {
	Subscribe() (<-chan models.StatusEvent, func())
	Snapshot() status.Snapshot
}

// Handler serves the status endpoints.
type Handler struct {
	hub           Hub
	gatherer      prometheus.Gatherer
	conversations func() int // Optional, reports the size of the conversation store
	upgrader      websocket.Upgrader
}

// NewHandler creates a status handler.
// Arguments:
//   - hub: live status source.
//   - gatherer: registry exposed on /metrics.
//   - conversations: optional counter of stored conversations, may be nil.
//
// Returns a pointer to a Handler.
func NewHandler(hub Hub, gatherer prometheus.Gatherer, conversations func() int) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		hub:           hub,
		gatherer:      gatherer,
		conversations: conversations,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router returns the chi router with all status routes.
func (h *Handler) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(LogrusLog)

	router.Get("/", h.StatusPage)
	router.Get("/healthz", h.Health)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	router.Get("/ws", h.StatusStream)
	return router
}

type healthResponse struct {
	Status        string `json:"status"`
	Transport     string `json:"transport"`
	Ready         bool   `json:"ready"`
	Turns         uint64 `json:"turns"`
	Conversations *int   `json:"conversations,omitempty"`
}

// Health reports whether the messaging transport is connected.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	snap := h.hub.Snapshot()
	resp := healthResponse{
		Status:    "starting",
		Transport: snap.Transport,
		Ready:     snap.Ready,
		Turns:     snap.Turns,
	}
	if snap.Ready {
		resp.Status = "ok"
	}
	if h.conversations != nil {
		n := h.conversations()
		resp.Conversations = &n
	}

	w.Header().Set("Content-Type", "application/json")
	if !snap.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Error("Failed to write health response")
	}
}

// StatusPage renders the HTML status page. The page itself subscribes to /ws.
func (h *Handler) StatusPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(statusPage)); err != nil {
		logrus.WithError(err).Error("Failed to write status page")
	}
}

// StatusStream upgrades to a websocket and pushes status events as JSON until the client leaves.
func (h *Handler) StatusStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	logrus.Debug("Status subscriber connected")
	for {
		select {
		case <-closed:
			logrus.Debug("Status subscriber disconnected")
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err = conn.WriteJSON(ev); err != nil {
				logrus.WithError(err).Debug("Failed to push status event")
				return
			}
		}
	}
}

const statusPage = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>RouteBOT</title>
</head>
<body>
<h1>RouteBOT</h1>
<p id="status">Conectando...</p>
<ul id="events"></ul>
<script>
const statusEl = document.getElementById("status");
const events = document.getElementById("events");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (msg) => {
  const ev = JSON.parse(msg.data);
  if (ev.type === "ready") {
    statusEl.textContent = ev.message;
    return;
  }
  const li = document.createElement("li");
  li.textContent = ev.timestamp + " " + ev.from + " -> " + ev.to + " (" + ev.outcome + ")";
  events.prepend(li);
};
ws.onclose = () => { statusEl.textContent = "Desconectado"; };
</script>
</body>
</html>
`
