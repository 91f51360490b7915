package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/internal/livescore/store"
	"github.com/radieske/cricket-live-platform-poc/internal/livescore/tracker"
	"github.com/radieske/cricket-live-platform-poc/internal/scoring-service/display"
	"github.com/radieske/cricket-live-platform-poc/internal/scoring-service/dto"
	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
	"github.com/radieske/cricket-live-platform-poc/pkg/cricket"
)

// Server expõe a API do mesário: registrar bolas, acompanhar/parar de
// acompanhar partidas e manipular o display transitório do over corrente.
// Mantém um tracker vivo por partida acompanhada.
type Server struct {
	log     *zap.Logger
	baseCtx context.Context // vida das assinaturas, independe das requests
	store   tracker.Store
	disp    *display.CurrentOver
	publ    interface {
		PublishBallRecorded(context.Context, events.BallRecorded) error
	}

	mu       sync.Mutex
	trackers map[string]*tracker.Tracker
}

func NewServer(baseCtx context.Context, log *zap.Logger, st tracker.Store, d *display.CurrentOver, p interface {
	PublishBallRecorded(context.Context, events.BallRecorded) error
}) *Server {
	return &Server{
		log:      log,
		baseCtx:  baseCtx,
		store:    st,
		disp:     d,
		publ:     p,
		trackers: make(map[string]*tracker.Tracker),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/matches/{id}/track", s.track)
	r.Delete("/v1/matches/{id}/track", s.untrack)
	r.Get("/v1/matches/{id}/score", s.getScore)
	r.Post("/v1/matches/{id}/balls", s.addBall)
	r.Post("/v1/matches/{id}/balls/undo", s.undoLast)
	r.Post("/v1/matches/{id}/over/end", s.endOver)
	r.Get("/v1/matches/{id}/over", s.currentOver)
	return r
}

// trackerFor devolve o tracker da partida, abrindo um se necessário.
// Idempotente: acompanhar uma partida já acompanhada reaproveita o tracker
// existente (no máximo uma assinatura viva por partida).
func (s *Server) trackerFor(matchID string) (*tracker.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tr, ok := s.trackers[matchID]; ok {
		return tr, nil
	}
	tr := tracker.New(s.store, s.log)
	if err := tr.Open(s.baseCtx, matchID); err != nil {
		return nil, err
	}
	s.trackers[matchID] = tr
	return tr, nil
}

func (s *Server) track(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.trackerFor(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) untrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	tr, ok := s.trackers[id]
	delete(s.trackers, id)
	s.mu.Unlock()
	if ok {
		tr.Close()
	}
	s.disp.EndOver(id)
	w.WriteHeader(http.StatusNoContent)
}

// getScore devolve o espelho local do tracker (não consulta o banco).
func (s *Server) getScore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tr, err := s.trackerFor(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	rec, loading := tr.Score()
	if loading {
		writeJSON(w, http.StatusAccepted, map[string]any{"loading": true})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "score not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// addBall aplica uma bola: fold puro sobre o snapshot local, escrita CAS
// via tracker, display e evento de auditoria só após sucesso.
func (s *Server) addBall(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.AddBallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Runs < 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	tr, err := s.trackerFor(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	rec, _ := tr.Score()
	if rec == nil {
		// registro ainda não existe: pré-condição não atendida, no-op
		writeJSON(w, http.StatusOK, dto.AddBallResponse{
			Applied: false,
			Message: "no score record for match",
		})
		return
	}

	ball := events.Ball{
		Runs:     req.Runs,
		IsWicket: req.IsWicket,
		IsWide:   req.IsWide,
		IsNoBall: req.IsNoBall,
		IsBye:    req.IsBye,
		IsLegBye: req.IsLegBye,
	}
	patch, ev := cricket.AddBall(*rec, ball, time.Now().UTC())

	if err := tr.Update(r.Context(), patch); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			// outro mesário escreveu primeiro; o chamador relê e repete
			http.Error(w, "score changed concurrently", http.StatusConflict)
			return
		}
		s.log.Error("score update failed", zap.String("match_id", id), zap.Error(err))
		http.Error(w, "score update failed", http.StatusInternalServerError)
		return
	}

	label := cricket.Label(ball)
	s.disp.Append(id, label)

	// auditoria é melhor-esforço: falha aqui não desfaz a bola
	_ = s.publ.PublishBallRecorded(r.Context(), events.BallRecorded{
		MatchID: id,
		Seq:     len(patch.BallByBall),
		Ball:    ev,
		Source:  "scoring-service",
		Version: rec.Version + 1,
	})

	writeJSON(w, http.StatusOK, dto.AddBallResponse{Applied: true, Label: label})
}

// undoLast remove a última bola apenas do display transitório; o log
// ball_by_ball persistido não muda.
func (s *Server) undoLast(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.disp.UndoLast(id)
	writeJSON(w, http.StatusOK, dto.CurrentOverResponse{MatchID: id, Balls: s.disp.Balls(id)})
}

// endOver limpa o display para o próximo over; sem I/O, nunca falha.
func (s *Server) endOver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.disp.EndOver(id)
	writeJSON(w, http.StatusOK, dto.CurrentOverResponse{MatchID: id, Balls: []string{}})
}

func (s *Server) currentOver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, dto.CurrentOverResponse{MatchID: id, Balls: s.disp.Balls(id)})
}

// Close encerra todos os trackers vivos e suas assinaturas.
func (s *Server) Close() {
	s.mu.Lock()
	trs := make([]*tracker.Tracker, 0, len(s.trackers))
	for _, tr := range s.trackers {
		trs = append(trs, tr)
	}
	s.trackers = make(map[string]*tracker.Tracker)
	s.mu.Unlock()
	for _, tr := range trs {
		tr.Close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
