// Package store implementa o armazenamento do registro canônico de placar:
// linha no Postgres (tabela match_scores) + notificação de mudança via
// Redis Pub/Sub, um canal por partida ("score_updates:<matchId>").
//
// Toda escrita é um compare-and-swap sobre a coluna version; o publish da
// notificação acontece somente após a escrita confirmada e carrega o
// registro novo por inteiro.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

// ErrVersionConflict indica que a versão esperada não é mais a persistida
// (outro escritor ganhou a corrida). O chamador decide se refaz a leitura.
var ErrVersionConflict = errors.New("score version conflict")

type Store struct {
	db     *sql.DB
	rdb    *redis.Client
	prefix string // prefixo dos canais Pub/Sub, ex: "score_updates:"
	log    *zap.Logger
}

func New(db *sql.DB, rdb *redis.Client, channelPrefix string, log *zap.Logger) *Store {
	return &Store{db: db, rdb: rdb, prefix: channelPrefix, log: log}
}

// Channel devolve o nome do canal Pub/Sub de uma partida.
func (s *Store) Channel(matchID string) string { return s.prefix + matchID }

const recordColumns = `match_id, team_a_runs, team_a_wickets, team_a_overs,
	team_b_runs, team_b_wickets, team_b_overs,
	current_batting_team_id, current_bowler, current_striker, current_non_striker,
	ball_by_ball, version, updated_at`

// Fetch busca o placar de uma partida. Zero linhas não é erro: o registro
// simplesmente ainda não existe (retorna nil, nil).
func (s *Store) Fetch(ctx context.Context, matchID string) (*events.ScoreRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM match_scores WHERE match_id = $1`, matchID)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch score: %w", err)
	}
	return rec, nil
}

// Create insere o registro zerado de uma partida que entrou em estado
// pontuável. Idempotente: se o registro já existe, mantém o existente.
func (s *Store) Create(ctx context.Context, matchID, battingTeamID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_scores
		  (match_id, team_a_runs, team_a_wickets, team_a_overs,
		   team_b_runs, team_b_wickets, team_b_overs,
		   current_batting_team_id, ball_by_ball, version, updated_at)
		VALUES ($1,0,0,0,0,0,0,$2,'[]'::jsonb,1,now())
		ON CONFLICT (match_id) DO NOTHING`,
		matchID, nullable(battingTeamID),
	)
	if err != nil {
		return fmt.Errorf("create score: %w", err)
	}
	return nil
}

// Apply aplica uma atualização parcial com CAS na versão. Campos nil do
// patch ficam intactos; version é incrementada e updated_at renovada em
// toda escrita. Retorna o registro resultante e publica a notificação.
func (s *Store) Apply(ctx context.Context, matchID string, patch events.ScorePatch) (*events.ScoreRecord, error) {
	set, args, err := buildSet(patch)
	if err != nil {
		return nil, err
	}

	args = append(args, matchID, patch.ExpectedVersion)
	q := fmt.Sprintf(`
		UPDATE match_scores SET %s, version = version + 1, updated_at = now()
		WHERE match_id = $%d AND version = $%d
		RETURNING %s`, set, len(args)-1, len(args), recordColumns)

	rec, err := scanRecord(s.db.QueryRowContext(ctx, q, args...))
	if err == sql.ErrNoRows {
		// ou o registro não existe, ou a versão esperada já passou
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("apply score patch: %w", err)
	}

	s.publish(ctx, rec)
	return rec, nil
}

// publish envia o registro novo para o canal da partida. Falha de publish
// não desfaz a escrita; os leitores reconvergem na próxima notificação.
func (s *Store) publish(ctx context.Context, rec *events.ScoreRecord) {
	b, err := json.Marshal(events.ScoreUpdate{MatchID: rec.MatchID, Score: *rec})
	if err != nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 500*time.Millisecond)
	defer cancel()
	if err := s.rdb.Publish(pctx, s.Channel(rec.MatchID), b).Err(); err != nil {
		s.log.Warn("score publish failed", zap.String("match_id", rec.MatchID), zap.Error(err))
	}
}

// buildSet monta a cláusula SET da atualização parcial, na ordem fixa das
// colunas, devolvendo também os argumentos posicionais.
func buildSet(patch events.ScorePatch) (string, []any, error) {
	var cols []string
	var args []any

	add := func(col string, v any) {
		args = append(args, v)
		cols = append(cols, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.TeamARuns != nil {
		add("team_a_runs", *patch.TeamARuns)
	}
	if patch.TeamAWickets != nil {
		add("team_a_wickets", *patch.TeamAWickets)
	}
	if patch.TeamAOvers != nil {
		add("team_a_overs", *patch.TeamAOvers)
	}
	if patch.TeamBRuns != nil {
		add("team_b_runs", *patch.TeamBRuns)
	}
	if patch.TeamBWickets != nil {
		add("team_b_wickets", *patch.TeamBWickets)
	}
	if patch.TeamBOvers != nil {
		add("team_b_overs", *patch.TeamBOvers)
	}
	if patch.CurrentBattingTeamID != nil {
		add("current_batting_team_id", *patch.CurrentBattingTeamID)
	}
	if patch.CurrentBowler != nil {
		add("current_bowler", *patch.CurrentBowler)
	}
	if patch.CurrentStriker != nil {
		add("current_striker", *patch.CurrentStriker)
	}
	if patch.CurrentNonStriker != nil {
		add("current_non_striker", *patch.CurrentNonStriker)
	}
	if patch.BallByBall != nil {
		b, err := json.Marshal(patch.BallByBall)
		if err != nil {
			return "", nil, fmt.Errorf("marshal ball_by_ball: %w", err)
		}
		add("ball_by_ball", b)
	}

	if len(cols) == 0 {
		return "", nil, errors.New("empty score patch")
	}
	return strings.Join(cols, ", "), args, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRecord(row rowScanner) (*events.ScoreRecord, error) {
	var (
		rec     events.ScoreRecord
		batting sql.NullString
		bowler  sql.NullString
		striker sql.NullString
		nonStr  sql.NullString
		raw     []byte
	)
	err := row.Scan(
		&rec.MatchID, &rec.TeamARuns, &rec.TeamAWickets, &rec.TeamAOvers,
		&rec.TeamBRuns, &rec.TeamBWickets, &rec.TeamBOvers,
		&batting, &bowler, &striker, &nonStr,
		&raw, &rec.Version, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.CurrentBattingTeamID = batting.String
	rec.CurrentBowler = bowler.String
	rec.CurrentStriker = striker.String
	rec.CurrentNonStriker = nonStr.String
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec.BallByBall); err != nil {
			return nil, fmt.Errorf("unmarshal ball_by_ball: %w", err)
		}
	}
	return &rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
