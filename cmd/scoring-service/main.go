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
	"github.com/radieske/cricket-live-platform-poc/internal/scoring-service/display"
	schttp "github.com/radieske/cricket-live-platform-poc/internal/scoring-service/http"
	"github.com/radieske/cricket-live-platform-poc/internal/scoring-service/producer"
	sharedcache "github.com/radieske/cricket-live-platform-poc/internal/shared/cache"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/config"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/db"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/kafka"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Kafka writer (topic ball_recorded, trilha de auditoria)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBallRecorded)
	defer writer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// deps
	scoreStore := store.New(pg, redisClient, cfg.ScoreChannelPrefix, log)
	disp := display.New()
	publ := producer.NewKafkaPublisher(writer, cfg.TopicBallRecorded)

	// HTTP público (API do mesário)
	api := schttp.NewServer(ctx, log, scoreStore, disp, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
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
		api.Close() // encerra trackers e assinaturas Redis
		_ = apiSrv.Shutdown(context.Background())
	}()

	log.Info("scoring-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
