package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/cricket-live-platform-poc/internal/score-service/cache"
	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

// Reader é o recorte de leitura do store de placares
type Reader interface {
	Fetch(ctx context.Context, matchID string) (*events.ScoreRecord, error)
}

// API expõe os endpoints REST de consulta de placar ao vivo
// Utiliza o store (Postgres) e cache (Redis)
type API struct {
	Store Reader       // acesso ao registro canônico
	Cache *cache.Cache // cache de placar corrente
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/matches/{id}/score", a.getScore) // Placar corrente da partida
	r.Get("/v1/matches/{id}/balls", a.getBalls) // Log bola a bola
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// getScore retorna o placar da partida, preferencialmente do cache.
// Registro inexistente é 404, não erro interno.
func (a *API) getScore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fromCache events.ScoreRecord
	if ok, _ := a.Cache.GetScore(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	rec, err := a.Store.Fetch(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	_ = a.Cache.SetScore(r.Context(), id, rec, 30*time.Second) // salva no cache por 30s
	writeJSON(w, http.StatusOK, rec)
}

// getBalls retorna o log autoritativo bola a bola da partida
func (a *API) getBalls(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := a.Store.Fetch(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if rec.BallByBall == nil {
		rec.BallByBall = []events.BallEvent{}
	}
	writeJSON(w, http.StatusOK, rec.BallByBall)
}
