package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/internal/livescore/store"
	"github.com/radieske/cricket-live-platform-poc/internal/score-processor/cache"
	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
	"github.com/radieske/cricket-live-platform-poc/pkg/cricket"
)

// ErrNoRecord indica bola de feed para partida sem registro de placar
// (a partida nunca entrou em estado pontuável).
var ErrNoRecord = errors.New("no score record for match")

// Applier é o recorte do store usado na aplicação de uma bola.
type Applier interface {
	Fetch(ctx context.Context, matchID string) (*events.ScoreRecord, error)
	Apply(ctx context.Context, matchID string, patch events.ScorePatch) (*events.ScoreRecord, error)
}

// applyBall executa o fold de uma bola sobre o registro persistido.
// O worker é o ponto de serialização do caminho automatizado: em conflito
// de versão (mesário escrevendo em paralelo), relê e refaz o fold algumas
// vezes antes de desistir.
func applyBall(ctx context.Context, st Applier, matchID string, ball events.Ball, now func() time.Time) (*events.ScoreRecord, events.BallEvent, error) {
	const attempts = 3

	var lastErr error
	for i := 0; i < attempts; i++ {
		rec, err := st.Fetch(ctx, matchID)
		if err != nil {
			return nil, events.BallEvent{}, err
		}
		if rec == nil {
			return nil, events.BallEvent{}, ErrNoRecord
		}

		patch, ev := cricket.AddBall(*rec, ball, now())
		updated, err := st.Apply(ctx, matchID, patch)
		if err == nil {
			return updated, ev, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, events.BallEvent{}, err
		}
		lastErr = err
	}
	return nil, events.BallEvent{}, lastErr
}

// Processor consome bolas do feed Kafka, aplica no placar e faz cache
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Store  Applier
	Cache  *cache.RedisCache
	DLQ    *kafka.Writer // opcional: mensagens não aplicáveis

	OnConsumed func()       // métricas (counter++)
	OnApplied  func()       // métricas
	OnCached   func()       // métricas
	OnError    func(string) // métricas por fase

	// OnAfterApply roda após persistência confirmada (ex.: publicar
	// ball_recorded para auditoria); seq é a posição 1-based no log
	OnAfterApply func(matchID string, ev events.BallEvent, seq, version int)
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		var feed events.BallFeed
		if err := json.Unmarshal(m.Value, &feed); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.toDLQ(ctx, m)
			continue
		}

		rec, ev, err := applyBall(ctx, p.Store, feed.MatchID, feed.Ball, func() time.Time { return time.Now().UTC() })
		if err != nil {
			p.Log.Warn("ball apply failed", zap.String("match_id", feed.MatchID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("apply")
			}
			p.toDLQ(ctx, m)
			continue
		}
		if p.OnApplied != nil {
			p.OnApplied()
		}

		// Atualiza cache Redis com o placar corrente
		if err := p.Cache.SetCurrent(ctx, *rec); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
			// cache é conveniência de leitura; a bola já está aplicada
		} else if p.OnCached != nil {
			p.OnCached()
		}

		if p.OnAfterApply != nil {
			p.OnAfterApply(feed.MatchID, ev, len(rec.BallByBall), rec.Version)
		}
	}
}

// toDLQ encaminha a mensagem problemática para a fila morta, se configurada
func (p *Processor) toDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := p.DLQ.WriteMessages(ctx, kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
	}
}
