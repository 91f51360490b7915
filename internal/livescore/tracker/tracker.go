// Package tracker mantém um espelho local, eventualmente consistente, do
// placar de uma partida: fetch inicial, assinatura de notificações e pontos
// de entrada de mutação. É o elo entre a tela de pontuação e o store.
package tracker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/internal/livescore/store"
	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

// Store é o recorte do armazenamento que o tracker consome.
type Store interface {
	Fetch(ctx context.Context, matchID string) (*events.ScoreRecord, error)
	Apply(ctx context.Context, matchID string, patch events.ScorePatch) (*events.ScoreRecord, error)
	Subscribe(ctx context.Context, matchID string) (store.Subscription, error)
}

type Tracker struct {
	log   *zap.Logger
	store Store

	mu      sync.Mutex
	matchID string
	rec     *events.ScoreRecord
	loading bool
	sub     store.Subscription
}

func New(s Store, log *zap.Logger) *Tracker {
	return &Tracker{log: log, store: s}
}

// Open começa a acompanhar uma partida. matchID vazio é um estado válido:
// "sem registro, sem carregamento", no-op idempotente. Qualquer assinatura
// anterior é encerrada antes: no máximo uma assinatura viva por tracker,
// mesmo com Open repetido para o mesmo matchID.
//
// O fetch inicial roda de forma síncrona sob o lock, então um fetch lento
// de uma partida anterior nunca aterrissa no espelho da partida nova.
func (t *Tracker) Open(ctx context.Context, matchID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closeLocked()
	t.matchID = matchID
	if matchID == "" {
		return nil
	}

	t.loading = true
	rec, err := t.store.Fetch(ctx, matchID)
	if err != nil {
		t.loading = false
		return err
	}
	// rec == nil é válido: o registro ainda não existe
	t.rec = rec

	sub, err := t.store.Subscribe(ctx, matchID)
	if err != nil {
		t.loading = false
		return err
	}
	t.sub = sub
	t.loading = false

	go t.consume(matchID, sub)

	t.log.Info("tracking match", zap.String("match_id", matchID))
	return nil
}

// consume aplica cada notificação recebida ao espelho local. Roda até o
// canal da assinatura fechar.
func (t *Tracker) consume(matchID string, sub store.Subscription) {
	for rec := range sub.Updates() {
		t.onChange(matchID, rec)
	}
}

// onChange substitui o espelho pelo payload da notificação, por inteiro,
// sem merge por campo. Notificações de assinaturas antigas e notificações
// com versão menor ou igual à corrente são descartadas.
func (t *Tracker) onChange(matchID string, rec events.ScoreRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.matchID != matchID {
		return
	}
	if t.rec != nil && rec.Version <= t.rec.Version {
		t.log.Debug("stale score notification discarded",
			zap.String("match_id", matchID),
			zap.Int("version", rec.Version),
			zap.Int("mirror_version", t.rec.Version),
		)
		return
	}
	t.rec = &rec
}

// Score devolve uma cópia do espelho corrente (nil se o registro não
// existe) e o indicador de carregamento do fetch inicial.
func (t *Tracker) Score() (*events.ScoreRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rec == nil {
		return nil, t.loading
	}
	rec := *t.rec
	return &rec, t.loading
}

// Update envia uma atualização parcial para o registro da partida aberta.
// Sem partida aberta ou sem registro carregado, é um no-op silencioso
// (pré-condição não atendida, não erro). Falha de escrita volta ao
// chamador, sem retry; o espelho local só muda via notificação.
func (t *Tracker) Update(ctx context.Context, patch events.ScorePatch) error {
	t.mu.Lock()
	matchID, rec := t.matchID, t.rec
	t.mu.Unlock()

	if matchID == "" || rec == nil {
		return nil
	}

	_, err := t.store.Apply(ctx, matchID, patch)
	return err
}

// Close encerra a assinatura corrente. Idempotente; roda exatamente uma
// vez por Open em qualquer caminho de saída (inclusive troca de partida).
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
}

func (t *Tracker) closeLocked() {
	if t.sub != nil {
		_ = t.sub.Close()
		t.sub = nil
	}
	t.matchID = ""
	t.rec = nil
	t.loading = false
}
