package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/internal/shared/config"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/db"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/kafka"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/logger"
	ev "github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com banco de dados Postgres para a trilha de auditoria
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: consome eventos ball_recorded para registrar auditoria
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		GroupID:  "ball-audit",
		Topic:    cfg.TopicBallRecorded,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// DLQ para eventos que não puderam ser gravados
	var dlqWriter *kafkago.Writer
	if cfg.TopicBallRecordedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBallRecordedDLQ)
		defer dlqWriter.Close()
	}

	// Servidor HTTP para métricas Prometheus e healthcheck
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := ":" + cfg.MetricsPort
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	log.Info("ball-audit-worker started", zap.String("consume", cfg.TopicBallRecorded))

	ctx := context.Background()

	// Loop principal: consome eventos do Kafka e grava a auditoria no banco
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		var recorded ev.BallRecorded
		if jerr := json.Unmarshal(msg.Value, &recorded); jerr != nil {
			log.Error("unmarshal ball_recorded", zap.Error(jerr))
			continue
		}

		if err := processOne(ctx, log, pg, dlqWriter, &recorded); err != nil {
			log.Error("audit ball", zap.String("matchId", recorded.MatchID), zap.Error(err))
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne grava um evento de bola na tabela de auditoria.
// Retry simples: tenta até 3 vezes antes de enviar para DLQ.
func processOne(
	ctx context.Context,
	log *zap.Logger,
	pg *sql.DB,
	dlqWriter *kafkago.Writer,
	recorded *ev.BallRecorded,
) error {
	err := insertBallEvent(ctx, pg, recorded)
	if err != nil {
		const retries = 3
		for i := 0; i < retries; i++ {
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			if err = insertBallEvent(ctx, pg, recorded); err == nil {
				break
			}
		}
		if err != nil {
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, recorded.MatchID, mustJSON(recorded))
			}
			return err
		}
	}

	log.Debug("ball audited",
		zap.String("matchId", recorded.MatchID),
		zap.Int("seq", recorded.Seq),
		zap.String("source", recorded.Source),
	)
	return nil
}

// insertBallEvent insere a linha de auditoria.
// Idempotente por (match_id, seq, source): redelivery do Kafka não duplica.
func insertBallEvent(ctx context.Context, pg *sql.DB, r *ev.BallRecorded) error {
	_, err := pg.ExecContext(ctx, `
		INSERT INTO ball_events (match_id, seq, over_number, ball_in_over, runs,
			is_wicket, is_wide, is_no_ball, is_bye, is_leg_bye, source, score_version, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (match_id, seq, source) DO NOTHING`,
		r.MatchID, r.Seq, r.Ball.Over, r.Ball.BallInOver, r.Ball.Runs,
		r.Ball.IsWicket, r.Ball.IsWide, r.Ball.IsNoBall, r.Ball.IsBye, r.Ball.IsLegBye,
		r.Source, r.Version, r.Ball.Timestamp)
	return err
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
