package events

import "time"

// Ball é a entrada bruta de uma bola, como enviada pelo mesário ou pelo feed.
// As flags não são mutuamente exclusivas e não sofrem validação cruzada.
type Ball struct {
	Runs     int  `json:"runs"`
	IsWicket bool `json:"isWicket"`
	IsWide   bool `json:"isWide"`
	IsNoBall bool `json:"isNoBall"`
	IsBye    bool `json:"isBye"`
	IsLegBye bool `json:"isLegBye"`
}

// BallEvent é a bola registrada no log ball_by_ball (imutável após append).
// Over e BallInOver são calculados sobre o valor de overs ANTERIOR à atualização.
type BallEvent struct {
	Runs       int       `json:"runs"`
	IsWicket   bool      `json:"isWicket"`
	IsWide     bool      `json:"isWide"`
	IsNoBall   bool      `json:"isNoBall"`
	IsBye      bool      `json:"isBye"`
	IsLegBye   bool      `json:"isLegBye"`
	Over       int       `json:"over"`
	BallInOver int       `json:"ballInOver"`
	Timestamp  time.Time `json:"timestamp"`
}

// BallFeed é o evento publicado no tópico "ball_feed" (simulador → ingest → processor).
type BallFeed struct {
	MatchID  string `json:"match_id"`
	Ball     Ball   `json:"ball"`
	Source   string `json:"source"` // "match-simulator"
	TsUnixMs int64  `json:"ts_unix_ms"`
}

// BallRecorded é o evento publicado no tópico "ball_recorded" após uma bola
// ser aplicada com sucesso no placar. Consumido pelo ball-audit-worker.
type BallRecorded struct {
	MatchID string    `json:"match_id"`
	Seq     int       `json:"seq"` // posição no log ball_by_ball (1-based)
	Ball    BallEvent `json:"ball"`
	Source  string    `json:"source"` // "scoring-service" | "score-processor-worker"
	Version int       `json:"version"`
}
