package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Postgres implementa operações de partida em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Match é o modelo persistido de uma partida
type Match struct {
	ID         string
	Tournament string
	TeamA      string
	TeamB      string
	OversLimit int
	Status     string // scheduled | live | completed
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const matchColumns = `id, tournament, team_a, team_b, overs_limit, status, created_at, updated_at`

// Create insere uma nova partida com status scheduled
func (p *Postgres) Create(ctx context.Context, tournament, teamA, teamB string, oversLimit int) (*Match, error) {
	id := uuid.New().String()
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO matches(id, tournament, team_a, team_b, overs_limit, status)
		VALUES($1,$2,$3,$4,$5,'scheduled')
		RETURNING `+matchColumns, id, tournament, teamA, teamB, oversLimit)
	return scanMatch(row)
}

// Get retorna uma partida pelo id
func (p *Postgres) Get(ctx context.Context, id string) (*Match, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id=$1`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// List retorna as partidas mais recentes
func (p *Postgres) List(ctx context.Context) ([]Match, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// SetStatus avança o status da partida dentro da transição permitida
// Usa lock pessimista na linha para evitar transições concorrentes
func (p *Postgres) SetStatus(ctx context.Context, id, from, to string) (*Match, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current string
	if err = tx.QueryRowContext(ctx, `SELECT status FROM matches WHERE id=$1 FOR UPDATE`, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if current != from {
		return nil, ErrInvalidTransition
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE matches SET status=$1, updated_at=now() WHERE id=$2
		RETURNING `+matchColumns, to, id)
	m, err := scanMatch(row)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanMatch(row scanner) (*Match, error) {
	var m Match
	err := row.Scan(&m.ID, &m.Tournament, &m.TeamA, &m.TeamB, &m.OversLimit, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
