package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/internal/livescore/store"
	mhttp "github.com/radieske/cricket-live-platform-poc/internal/match-service/http"
	mrepo "github.com/radieske/cricket-live-platform-poc/internal/match-service/repo"
	sharedcache "github.com/radieske/cricket-live-platform-poc/internal/shared/cache"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/config"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/db"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("match-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "match-service"), zap.String("env", cfg.Env))

	// Conexão com Postgres para cadastro de partidas e placares
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis usado pelo store de placar para notificar criações
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Instancia repositório, store de placar e servidor HTTP de partidas
	repo := mrepo.NewPostgres(pg)
	scoreStore := store.New(pg, redisClient, cfg.ScoreChannelPrefix, log)
	api := mhttp.NewServer(log, repo, scoreStore)

	// Servidor HTTP público (API de partidas)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8082
		Handler: api.Router(),
	}

	// Servidor de métricas e health check
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.PingContext(ctx); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: metricsMux} // ex: 9098

	// Inicia servidor de métricas/health em goroutine separada
	go func() {
		log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("metrics srv", zap.Error(err))
		}
	}()

	// Inicia servidor principal da API de partidas
	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
