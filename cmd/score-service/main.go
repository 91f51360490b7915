package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/internal/livescore/store"
	scache "github.com/radieske/cricket-live-platform-poc/internal/score-service/cache"
	shttp "github.com/radieske/cricket-live-platform-poc/internal/score-service/http"
	"github.com/radieske/cricket-live-platform-poc/internal/score-service/ws"
	sharedcache "github.com/radieske/cricket-live-platform-poc/internal/shared/cache"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/config"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/db"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres: registro canônico de placar
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: cache de leitura + Pub/Sub de atualizações
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scoreStore := store.New(pg, redisClient, cfg.ScoreChannelPrefix, log)
	api := &shttp.API{Store: scoreStore, Cache: scache.New(redisClient)}

	// Hub WS para espectadores + assinante Redis que repassa os placares
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, redisClient, cfg.ScoreChannelPrefix, hub, log)

	mux := http.NewServeMux()
	mux.Handle("/", api.Router())
	mux.HandleFunc("/ws", hub.HandleWS)

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: mux,
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.PingContext(r.Context()); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	go func() {
		<-ctx.Done()
		_ = apiSrv.Shutdown(context.Background())
	}()

	log.Info("score-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
