package events

import "time"

// ScoreRecord é o registro canônico de placar de uma partida (no máximo um
// registro ao vivo por match_id). Espelha a linha da tabela match_scores.
//
// TeamAOvers codifica "overs completos + bolas do over corrente / 10":
// 3.4 = 3 overs e 4 bolas válidas. O dígito fracionário é base-10 por
// decisão de projeto; valores .6–.9 nunca são produzidos pelo caminho
// legal de atualização, mas não são rejeitados se vierem de fora.
type ScoreRecord struct {
	MatchID      string  `json:"match_id"`
	TeamARuns    int     `json:"team_a_runs"`
	TeamAWickets int     `json:"team_a_wickets"`
	TeamAOvers   float64 `json:"team_a_overs"`
	TeamBRuns    int     `json:"team_b_runs"`
	TeamBWickets int     `json:"team_b_wickets"`
	TeamBOvers   float64 `json:"team_b_overs"`

	// Referências definidas pela UI, nunca derivadas pelo processor.
	CurrentBattingTeamID string `json:"current_batting_team_id,omitempty"`
	CurrentBowler        string `json:"current_bowler,omitempty"`
	CurrentStriker       string `json:"current_striker,omitempty"`
	CurrentNonStriker    string `json:"current_non_striker,omitempty"`

	BallByBall []BallEvent `json:"ball_by_ball"`

	// Version cresce monotonicamente a cada escrita; receptores descartam
	// notificações com version menor ou igual à do espelho local.
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScorePatch é uma atualização parcial do ScoreRecord. Campos nil não são
// alterados. BallByBall, quando não-nil, substitui o log inteiro (append
// feito pelo chamador sobre o snapshot corrente).
type ScorePatch struct {
	TeamARuns    *int     `json:"team_a_runs,omitempty"`
	TeamAWickets *int     `json:"team_a_wickets,omitempty"`
	TeamAOvers   *float64 `json:"team_a_overs,omitempty"`
	TeamBRuns    *int     `json:"team_b_runs,omitempty"`
	TeamBWickets *int     `json:"team_b_wickets,omitempty"`
	TeamBOvers   *float64 `json:"team_b_overs,omitempty"`

	CurrentBattingTeamID *string `json:"current_batting_team_id,omitempty"`
	CurrentBowler        *string `json:"current_bowler,omitempty"`
	CurrentStriker       *string `json:"current_striker,omitempty"`
	CurrentNonStriker    *string `json:"current_non_striker,omitempty"`

	BallByBall []BallEvent `json:"ball_by_ball,omitempty"`

	// ExpectedVersion é a versão lida antes da escrita; a escrita só é
	// aplicada se a versão persistida ainda for essa (compare-and-swap).
	ExpectedVersion int `json:"expected_version"`
}

// ScoreUpdate é o envelope publicado no canal Redis Pub/Sub por partida e
// repassado aos clientes WebSocket do score-service.
type ScoreUpdate struct {
	MatchID string      `json:"matchId"`
	Score   ScoreRecord `json:"score"`
}
