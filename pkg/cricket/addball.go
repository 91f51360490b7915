// Package cricket contém a regra pura de pontuação: transforma o placar
// corrente e uma bola em um delta de placar. Nenhum I/O acontece aqui; a
// persistência e a propagação ficam a cargo do livescore.
package cricket

import (
	"strconv"
	"time"

	"github.com/radieske/cricket-live-platform-poc/pkg/contracts/events"
)

// AddBall aplica uma bola ao placar do time A e devolve o patch a persistir
// junto com o evento anexado ao log.
//
// Regras:
//   - wide/no-ball valem +1 run além de Runs e não consomem bola do over;
//   - wicket incrementa wickets independentemente das demais flags
//     (combinações ilegais de críquete, como wide+wicket, são aceitas);
//   - Over/BallInOver do evento são derivados do overs PRÉ-atualização.
//     No fechamento de over o Over registrado não é corrigido para o over
//     recém-completado; comportamento mantido de propósito.
//
// O placar do time B e as referências de batedor/arremessador nunca são
// tocados por aqui.
func AddBall(rec events.ScoreRecord, ball events.Ball, now time.Time) (events.ScorePatch, events.BallEvent) {
	extra := 0
	if ball.IsWide || ball.IsNoBall {
		extra = 1
	}

	runs := rec.TeamARuns + ball.Runs + extra
	wickets := rec.TeamAWickets
	if ball.IsWicket {
		wickets++
	}

	overs := rec.TeamAOvers
	if !ball.IsWide && !ball.IsNoBall {
		overs = NextOvers(rec.TeamAOvers)
	}

	ev := events.BallEvent{
		Runs:       ball.Runs,
		IsWicket:   ball.IsWicket,
		IsWide:     ball.IsWide,
		IsNoBall:   ball.IsNoBall,
		IsBye:      ball.IsBye,
		IsLegBye:   ball.IsLegBye,
		Over:       CompletedOvers(rec.TeamAOvers) + 1,
		BallInOver: BallsInOver(rec.TeamAOvers) + 1,
		Timestamp:  now,
	}

	log := make([]events.BallEvent, 0, len(rec.BallByBall)+1)
	log = append(log, rec.BallByBall...)
	log = append(log, ev)

	return events.ScorePatch{
		TeamARuns:       &runs,
		TeamAWickets:    &wickets,
		TeamAOvers:      &overs,
		BallByBall:      log,
		ExpectedVersion: rec.Version,
	}, ev
}

// Label devolve o rótulo exibido no "this over" da tela de pontuação.
func Label(ball events.Ball) string {
	switch {
	case ball.IsWicket:
		return "W"
	case ball.IsWide:
		return "WD"
	case ball.IsNoBall:
		return "NB"
	case ball.IsBye:
		return "B"
	case ball.IsLegBye:
		return "LB"
	default:
		return strconv.Itoa(ball.Runs)
	}
}
