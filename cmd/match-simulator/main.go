package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/internal/shared/config"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/logger"
	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Métricas Prometheus para monitoramento de conexões e mensagens
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulator_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsBallsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_balls_sent_total",
		Help: "Total de bolas enviadas via WS",
	})
)

// Representa uma conexão de cliente WebSocket
type clientConn struct {
	id   string
	conn *websocket.Conn
}

// Estrutura responsável por gerenciar os clientes conectados via WebSocket
// e realizar broadcast de mensagens para todos eles.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{
		clients: make(map[string]*clientConn),
		log:     log,
	}
}

// Adiciona um novo cliente ao hub e incrementa a métrica de conexões
func (h *hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	wsConnections.Inc()
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

// Remove um cliente do hub e decrementa a métrica de conexões
func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

// Envia uma mensagem para todos os clientes conectados
func (h *hub) broadcast(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, c := range h.clients {
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
		} else {
			wsBallsSent.Inc()
		}
	}
}

// randomBall gera uma bola com distribuição aproximada de um jogo real:
// bolas sem corrida dominam, wickets e extras são raros.
func randomBall() events.Ball {
	switch n := rand.Intn(100); {
	case n < 35:
		return events.Ball{Runs: 0}
	case n < 60:
		return events.Ball{Runs: 1}
	case n < 70:
		return events.Ball{Runs: 2}
	case n < 76:
		return events.Ball{Runs: 4}
	case n < 80:
		return events.Ball{Runs: 6}
	case n < 85:
		return events.Ball{IsWicket: true}
	case n < 90:
		return events.Ball{IsWide: true}
	case n < 93:
		return events.Ball{IsNoBall: true}
	case n < 97:
		return events.Ball{Runs: 1, IsBye: true}
	default:
		return events.Ball{Runs: 1, IsLegBye: true}
	}
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	rand.Seed(time.Now().UnixNano())

	prometheus.MustRegister(wsConnections, wsBallsSent)

	// Partidas simuladas: ids fixos ou via env SIM_MATCH_IDS
	matchIDs := []string{"MATCH_001", "MATCH_002"}
	if v := os.Getenv("SIM_MATCH_IDS"); v != "" {
		matchIDs = strings.Split(v, ",")
	}

	h := newHub(log)

	// Gera e envia uma bola por partida a cada 4 segundos
	go func() {
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			for _, id := range matchIDs {
				feed := events.BallFeed{
					MatchID:  id,
					Ball:     randomBall(),
					Source:   cfg.ServiceName,
					TsUnixMs: time.Now().UnixMilli(),
				}
				h.broadcast(feed)
			}
		}
	}()

	// ==== MUX PÚBLICO (HTTP principal): /ws
	appMux := http.NewServeMux()

	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := fmt.Sprintf("%d", time.Now().UnixNano())
		c := &clientConn{id: id, conn: conn}
		h.add(c)

		// Goroutine para manter a conexão viva e remover cliente ao desconectar
		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			_ = conn.SetReadDeadline(time.Time{})
			for {
				// Lê e descarta mensagens do cliente para manter o socket limpo
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	// Servidor de métricas em goroutine
	go func() {
		metricsAddr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("match simulator (metrics) running",
			zap.String("addr", metricsAddr),
			zap.String("paths", "/healthz,/metrics"),
		)
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// Servidor público (feed WS)
	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("match simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/ws"),
		zap.Strings("matches", matchIDs),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
