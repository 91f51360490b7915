package store

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

// Subscription é uma assinatura de notificações de mudança de placar de uma
// partida. Updates entrega o valor novo por inteiro a cada notificação; o
// canal é fechado quando a assinatura termina. Close é idempotente.
type Subscription interface {
	Updates() <-chan events.ScoreRecord
	Close() error
}

// Subscribe cria uma assinatura no canal da partida. As notificações chegam
// na ordem de recebimento do Redis, sem garantia de ordem em relação a
// escritas locais em andamento; quem consome descarta as atrasadas pela
// versão do registro.
func (s *Store) Subscribe(ctx context.Context, matchID string) (Subscription, error) {
	ps := s.rdb.Subscribe(ctx, s.Channel(matchID))

	// força o SUBSCRIBE antes de retornar, para não perder notificações
	// entre o fetch inicial e o início do consumo
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := &redisSubscription{
		ps:  ps,
		out: make(chan events.ScoreRecord, 16),
	}

	go func() {
		defer close(sub.out)
		for msg := range ps.Channel() {
			var upd events.ScoreUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
				s.log.Warn("score notification unmarshal failed", zap.Error(err))
				continue
			}
			select {
			case sub.out <- upd.Score:
			default:
				// consumidor lento: descarta, a próxima notificação traz
				// o registro completo de novo
			}
		}
	}()

	return sub, nil
}

type redisSubscription struct {
	ps interface{ Close() error }

	out  chan events.ScoreRecord
	once sync.Once
}

func (r *redisSubscription) Updates() <-chan events.ScoreRecord { return r.out }

func (r *redisSubscription) Close() error {
	var err error
	r.once.Do(func() { err = r.ps.Close() })
	return err
}
