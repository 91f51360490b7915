package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/internal/shared/config"
	"github.com/radieske/cricket-live-platform-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	scoresURL := os.Getenv("SCORES_URL")
	if scoresURL == "" {
		scoresURL = "http://localhost:8080"
	}
	matchesURL := os.Getenv("MATCHES_URL")
	if matchesURL == "" {
		matchesURL = "http://localhost:8082"
	}
	scoringURL := os.Getenv("SCORING_URL")
	if scoringURL == "" {
		scoringURL = "http://localhost:8083"
	}
	scores := rp(scoresURL)
	matches := rp(matchesURL)
	scoring := rp(scoringURL)

	mux := http.NewServeMux()

	// leitura de placar (ex.: /api/scores/* -> score-service)
	mux.Handle("/api/scores/", http.StripPrefix("/api/scores", scores))

	// partidas (ex.: /api/matches/* -> match-service)
	mux.Handle("/api/matches/", http.StripPrefix("/api/matches", matches))

	// mesário (ex.: /api/scoring/* -> scoring-service)
	mux.Handle("/api/scoring/", http.StripPrefix("/api/scoring", scoring))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
