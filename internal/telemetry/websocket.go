package telemetry

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocket broadcasts the current noise-power vector to every connected
// client. Grounded on the teacher's transport.WebSocketTransport: an
// upgrader, a client set, and a buffered broadcast channel drained by one
// goroutine, so Send never blocks on a slow or wedged client.
type WebSocket struct {
	upgrader  websocket.Upgrader
	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool

	broadcast chan []float64
	server    *http.Server
}

// NewWebSocket starts an HTTP server on addr (e.g. ":8080") serving a
// single /ws upgrade endpoint, plus the broadcast goroutine, and returns
// without waiting for either to be running.
func NewWebSocket(addr string) *WebSocket {
	ws := &WebSocket{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []float64, 64),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.handleUpgrade)
	ws.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetryLog.Errorf("websocket server: %v", err)
		}
	}()
	go ws.run()

	return ws
}

func (ws *WebSocket) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetryLog.Errorf("websocket upgrade: %v", err)
		return
	}
	ws.clientsMu.Lock()
	ws.clients[conn] = true
	ws.clientsMu.Unlock()

	go func() {
		if _, _, err := conn.ReadMessage(); err != nil {
			ws.clientsMu.Lock()
			delete(ws.clients, conn)
			ws.clientsMu.Unlock()
			conn.Close()
		}
	}()
}

func (ws *WebSocket) run() {
	for noisePower := range ws.broadcast {
		ws.clientsMu.Lock()
		for client := range ws.clients {
			if err := client.WriteJSON(noisePower); err != nil {
				client.Close()
				delete(ws.clients, client)
			}
		}
		ws.clientsMu.Unlock()
	}
}

// Send queues noisePower for broadcast. A copy is taken since the manager
// reuses its noise-power slice across frames.
func (ws *WebSocket) Send(noisePower []float64) error {
	cp := append([]float64(nil), noisePower...)
	select {
	case ws.broadcast <- cp:
	default:
		// broadcast channel full: drop rather than block the caller.
	}
	return nil
}

// Close shuts down the HTTP server and every open client connection.
func (ws *WebSocket) Close() error {
	ws.clientsMu.Lock()
	for client := range ws.clients {
		client.Close()
	}
	ws.clients = make(map[*websocket.Conn]bool)
	ws.clientsMu.Unlock()

	close(ws.broadcast)
	if ws.server != nil {
		if err := ws.server.Close(); err != nil {
			return fmt.Errorf("telemetry: close websocket server: %w", err)
		}
	}
	return nil
}

var _ Sink = (*WebSocket)(nil)
