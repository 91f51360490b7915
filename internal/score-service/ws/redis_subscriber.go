package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

// StartRedisSubscriber inicia uma goroutine que escuta os canais Redis
// Pub/Sub de placar (um por partida, via pattern) e repassa as atualizações
// recebidas para os espectadores conectados via Hub
//
// Funcionamento:
// - PSUBSCRIBE em <prefix>* cobre todas as partidas com um único assinante
// - Desserializa cada mensagem para ScoreUpdate
// - Chama hub.Broadcast para enviar aos clientes inscritos na partida
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channelPrefix string, hub *Hub, log *zap.Logger) {
	sub := r.PSubscribe(ctx, channelPrefix+"*")
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var upd events.ScoreUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					log.Warn("ws subscriber unmarshal error", zap.Error(err))
					continue
				}
				hub.Broadcast(upd) // envia o placar novo para os inscritos
			}
		}
	}()
}
