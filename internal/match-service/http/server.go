package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/internal/match-service/dto"
	"github.com/radieske/cricket-live-platform-poc/internal/match-service/repo"
)

// Repo define a interface de operações de partida usadas pelo handler HTTP
type Repo interface {
	Create(ctx context.Context, tournament, teamA, teamB string, oversLimit int) (*repo.Match, error)
	Get(ctx context.Context, id string) (*repo.Match, error)
	List(ctx context.Context) ([]repo.Match, error)
	SetStatus(ctx context.Context, id, from, to string) (*repo.Match, error)
}

// ScoreStore cria o registro de placar zerado quando a partida entra ao vivo
type ScoreStore interface {
	Create(ctx context.Context, matchID, battingTeamID string) error
}

// Server expõe endpoints HTTP para cadastro e ciclo de vida de partidas
type Server struct {
	log    *zap.Logger
	repo   Repo
	scores ScoreStore
}

// NewServer instancia o servidor HTTP de partidas
func NewServer(log *zap.Logger, r Repo, scores ScoreStore) *Server {
	return &Server{log: log, repo: r, scores: scores}
}

// Router retorna o mux HTTP com as rotas da API de partidas
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /matches", s.create)
	mux.HandleFunc("GET /matches", s.list)
	mux.HandleFunc("GET /matches/{id}", s.get)
	mux.HandleFunc("POST /matches/{id}/start", s.start)       // scheduled -> live
	mux.HandleFunc("POST /matches/{id}/complete", s.complete) // live -> completed
	return mux
}

// create cadastra uma nova partida com status scheduled
func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Tournament == "" || req.TeamA == "" || req.TeamB == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	m, err := s.repo.Create(r.Context(), req.Tournament, req.TeamA, req.TeamB, req.OversLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toResponse(m))
}

// list retorna as partidas cadastradas
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ms, err := s.repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.MatchResponse, 0, len(ms))
	for i := range ms {
		out = append(out, toResponse(&ms[i]))
	}
	writeJSON(w, out)
}

// get retorna uma partida pelo id
func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, toResponse(m))
}

// start coloca a partida ao vivo e cria o registro de placar zerado.
// A criação do placar é idempotente, então repetir o start após falha
// parcial não duplica registro.
func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	m, err := s.repo.SetStatus(r.Context(), id, "scheduled", "live")
	if err != nil {
		writeTransitionErr(w, err)
		return
	}
	if err := s.scores.Create(r.Context(), id, m.TeamA); err != nil {
		s.log.Error("score record create failed", zap.String("match_id", id), zap.Error(err))
		http.Error(w, "failed to initialize score", http.StatusInternalServerError)
		return
	}
	s.log.Info("match live", zap.String("match_id", id))
	writeJSON(w, toResponse(m))
}

// complete encerra a partida
func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.SetStatus(r.Context(), r.PathValue("id"), "live", "completed")
	if err != nil {
		writeTransitionErr(w, err)
		return
	}
	writeJSON(w, toResponse(m))
}

func writeTransitionErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "match not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrInvalidTransition):
		http.Error(w, "invalid status transition", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toResponse(m *repo.Match) dto.MatchResponse {
	return dto.MatchResponse{
		ID:         m.ID,
		Tournament: m.Tournament,
		TeamA:      m.TeamA,
		TeamB:      m.TeamB,
		OversLimit: m.OversLimit,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
