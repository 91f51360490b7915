package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"

	"github.com/radieske/cricket-live-platform-poc/internal/livescore/store"
	"github.com/radieske/cricket-live-platform-poc/internal/score-processor/cache"
	"github.com/radieske/cricket-live-platform-poc/internal/score-processor/consumer"
	sharedcache "github.com/radieske/cricket-live-platform-poc/internal/shared/cache"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/config"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/db"
	sharedkafka "github.com/radieske/cricket-live-platform-poc/internal/shared/kafka"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Store canônico (Postgres + notificação Pub/Sub) e cache de leitura
	scoreStore := store.New(pg, redisClient, cfg.ScoreChannelPrefix, log)
	ttl := 60 * time.Second
	rcache := cache.NewRedisCache(redisClient, ttl)

	// Configura o consumer Kafka (consumer group score-processor)
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  "score-processor",
		Topic:    cfg.TopicBallFeed,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// DLQ para bolas que não puderam ser aplicadas
	var dlqWriter *kafka.Writer
	if cfg.TopicBallFeedDLQ != "" {
		dlqWriter = sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBallFeedDLQ)
		defer dlqWriter.Close()
	}

	// Writer da trilha de auditoria ball_recorded
	recordedWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBallRecorded)
	defer recordedWriter.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "score_proc_balls_consumed_total", Help: "bolas consumidas"})
	applied := prometheus.NewCounter(prometheus.CounterOpts{Name: "score_proc_balls_applied_total", Help: "bolas aplicadas no placar"})
	cachedC := prometheus.NewCounter(prometheus.CounterOpts{Name: "score_proc_cache_sets_total", Help: "sets no cache"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "score_proc_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, applied, cachedC, errorsBy)

	// Instancia o processor, conectando callbacks de métricas e auditoria
	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Store:      scoreStore,
		Cache:      rcache,
		DLQ:        dlqWriter,
		OnConsumed: func() { consumed.Inc() },
		OnApplied:  func() { applied.Inc() },
		OnCached:   func() { cachedC.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após aplicar a bola, publica o evento de auditoria ball_recorded
		OnAfterApply: func(matchID string, ev events.BallEvent, seq, version int) {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			rec := events.BallRecorded{
				MatchID: matchID,
				Seq:     seq,
				Ball:    ev,
				Source:  "score-processor-worker",
				Version: version,
			}
			if err := sharedkafka.WriteJSON(ctx, recordedWriter, matchID, mustJSON(rec)); err != nil {
				log.Warn("ball_recorded publish failed", zap.Error(err))
			}
		},
	}

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("score-processor started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("score-processor stopped")
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
