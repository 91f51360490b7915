package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

// Hub gerencia conexões WebSocket e assinaturas de placar por partida
// subs: mapeia matchID para o conjunto de conexões inscritas
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// matchID -> set of connections
	subs map[string]map[*websocket.Conn]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*websocket.Conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe em partidas e responde a pings
// Cada espectador pode acompanhar múltiplas partidas ao mesmo tempo
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.subscribe(msg.MatchID, conn)
		case "unsubscribe":
			h.unsubscribe(msg.MatchID, conn)
		case "ping":
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
		}
	}
	h.drop(conn)
}

func (h *Hub) subscribe(matchID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[matchID]; !ok {
		h.subs[matchID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[matchID][conn] = struct{}{}
}

func (h *Hub) unsubscribe(matchID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[matchID]; ok {
		delete(m, conn)
		if len(m) == 0 {
			delete(h.subs, matchID)
		}
	}
}

// drop remove a conexão de todas as assinaturas ao desconectar
func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
}

// subscribers devolve quantas conexões acompanham uma partida
func (h *Hub) subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}

// Broadcast envia uma atualização de placar para todos os espectadores
// inscritos na partida correspondente
func (h *Hub) Broadcast(update events.ScoreUpdate) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs[update.MatchID]))
	for c := range h.subs[update.MatchID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range conns {
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
