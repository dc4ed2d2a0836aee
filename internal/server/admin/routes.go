package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/six78/gamelobby/internal/server/gaming"
	"github.com/six78/gamelobby/internal/server/network"
	"github.com/six78/gamelobby/internal/transport"
	"github.com/six78/gamelobby/pkg/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func SetupRoutes(manager *gaming.Manager, server *network.Server, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("admin")

	r := chi.NewRouter()
	r.Get("/healthz", Healthz)
	r.Get("/rooms", Rooms(manager))
	r.Get("/rooms/{roomID}", Room(manager))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", WebSocket(server, logger))
	return r
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func Rooms(manager *gaming.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := manager.Rooms()
		infos := make([]gaming.RoomInfo, 0, len(rooms))
		for _, room := range rooms {
			infos = append(infos, room.Info())
		}
		writeJSON(w, http.StatusOK, infos)
	}
}

func Room(manager *gaming.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := manager.FindRoom(protocol.RoomID(chi.URLParam(r, "roomID")))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, room.Info())
	}
}

// WebSocket serves a lobby connection over a WebSocket until it closes.
func WebSocket(server *network.Server, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		server.HandleBlocking(transport.NewWebSocketConnection(conn))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
