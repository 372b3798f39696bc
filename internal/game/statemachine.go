package game

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxRollAttempts is how often a player without a movable figure may retry
// the roll before the turn passes on.
const maxRollAttempts = 3

// Phase identifies the current step of a turn.
type Phase int

const (
	// PhaseStartTurn waits for the current player's roll request.
	PhaseStartTurn Phase = iota
	// PhaseRolled waits for the current player's figure choice.
	PhaseRolled
	// PhaseMoveToNextTurn resolves done checks and advances the turn.
	PhaseMoveToNextTurn
	// PhaseWaitingForReconnect waits for the current player to rejoin.
	PhaseWaitingForReconnect
	// PhaseDone is terminal.
	PhaseDone
)

// State is the turn state machine's state. Attempt is used during
// PhaseStartTurn, Value during PhaseRolled, and Prev during
// PhaseWaitingForReconnect.
type State struct {
	Phase   Phase
	Attempt int
	Value   int
	Prev    *State
}

// StartTurn is the initial state of every turn.
func StartTurn() State { return StartTurnAttempt(0) }

// StartTurnAttempt is a turn start after the given number of failed rolls.
func StartTurnAttempt(attempt int) State {
	return State{Phase: PhaseStartTurn, Attempt: attempt}
}

// Rolled waits for the player to pick a figure for the rolled value.
func Rolled(value int) State { return State{Phase: PhaseRolled, Value: value} }

// MoveToNextTurn finishes the current turn.
func MoveToNextTurn() State { return State{Phase: PhaseMoveToNextTurn} }

// Done is the terminal state.
func Done() State { return State{Phase: PhaseDone} }

// WaitingForReconnect pauses the game until the current player rejoins, then
// resumes prev.
func WaitingForReconnect(prev State) State {
	return State{Phase: PhaseWaitingForReconnect, Prev: &prev}
}

// Rejoin carries a reconnecting player's secret and replacement connection.
type Rejoin struct {
	Code uuid.UUID
	Conn Conn
}

// ErrRejoinClosed is returned when the rejoin channel closes while the game
// waits for a reconnect.
var ErrRejoinClosed = errors.New("rejoin channel closed")

// Step performs a single state machine transition and returns the next
// state. Connection failures on the current player switch into
// PhaseWaitingForReconnect instead of returning an error; errors are
// reserved for shutdown conditions.
func Step(ctx context.Context, st State, g *Game, rejoin <-chan Rejoin) (State, error) {
	switch st.Phase {
	case PhaseStartTurn:
		return stepStartTurn(st, g), nil
	case PhaseRolled:
		return stepRolled(st, g), nil
	case PhaseMoveToNextTurn:
		return stepMoveToNextTurn(g), nil
	case PhaseWaitingForReconnect:
		return stepWaitingForReconnect(ctx, st, g, rejoin)
	case PhaseDone:
		return st, nil
	default:
		return st, errors.New("unknown state")
	}
}

func stepStartTurn(st State, g *Game) State {
	current := g.CurrentPlayer()
	log.Debug().
		Int("seat", g.Next).
		Str("player", current.Name).
		Int("attempt", st.Attempt).
		Msg("starting turn")

	if err := current.Send(TurnResponse{Type: TypeTurn}); err != nil {
		return WaitingForReconnect(st)
	}

	raw, err := current.Receive()
	if err != nil {
		log.Warn().Str("player", current.Name).Msg("player disconnected")
		return WaitingForReconnect(st)
	}

	req, err := ParseRequest(raw)
	if err != nil {
		log.Error().Err(err).Str("player", current.Name).Msg("invalid message")
		return st
	}
	if req.Type != RequestRoll {
		log.Error().
			Str("player", current.Name).
			Str("request", string(req.Type)).
			Msg("unexpected request, expected roll")
		return st
	}

	value := g.Roll()
	log.Debug().Str("player", current.Name).Int("value", value).Msg("rolled")

	if value == 6 {
		return resolveSix(current, g)
	}

	// A figure parked on the own entry field blocks newcomers and must
	// clear the way while figures remain in start.
	if blocker := current.EntryBlocker(); blocker >= 0 && current.HasFiguresInStart() {
		sendRolled(current, value, false)
		if !current.MoveFigure(blocker, value) {
			log.Warn().Str("player", current.Name).Msg("entry blocker could not be moved")
		}
		g.CheckCapture(g.Next)
		g.BroadcastState()
		return MoveToNextTurn()
	}

	movable := current.MovableFigures(value)
	if len(movable) == 0 {
		sendRolled(current, value, false)
		if st.Attempt+1 < maxRollAttempts {
			return StartTurnAttempt(st.Attempt + 1)
		}
		return MoveToNextTurn()
	}

	sendRolled(current, value, true)
	return Rolled(value)
}

// resolveSix handles a rolled six: entering the board takes priority, and
// the player always rolls again after an automatic or chosen move.
func resolveSix(current *Player, g *Game) State {
	const value = 6

	if blocker := current.EntryBlocker(); blocker >= 0 && current.HasFiguresInStart() {
		sendRolled(current, value, false)
		if !current.MoveFigure(blocker, value) {
			log.Warn().Str("player", current.Name).Msg("entry blocker could not be moved")
		}
		g.CheckCapture(g.Next)
		g.BroadcastState()
		return StartTurn()
	}

	if idx := current.FirstInStart(); idx >= 0 {
		sendRolled(current, value, false)
		if !current.EnterBoard(idx) {
			log.Warn().Str("player", current.Name).Msg("figure could not enter the board")
		} else {
			log.Debug().Str("player", current.Name).Int("figure", idx).Msg("figure entered the board")
		}
		g.CheckCapture(g.Next)
		g.BroadcastState()
		return StartTurn()
	}

	movable := current.MovableFigures(value)
	if len(movable) == 0 {
		sendRolled(current, value, false)
		return MoveToNextTurn()
	}

	sendRolled(current, value, true)
	return Rolled(value)
}

func stepRolled(st State, g *Game) State {
	current := g.CurrentPlayer()

	raw, err := current.Receive()
	if err != nil {
		log.Warn().Str("player", current.Name).Msg("player disconnected")
		return WaitingForReconnect(st)
	}

	req, err := ParseRequest(raw)
	if err != nil {
		log.Error().Err(err).Str("player", current.Name).Msg("invalid message")
		return st
	}
	if req.Type != RequestMove {
		log.Error().
			Str("player", current.Name).
			Str("request", string(req.Type)).
			Msg("unexpected request, expected move")
		return st
	}

	if !current.MoveFigure(req.Figure, st.Value) {
		log.Warn().
			Str("player", current.Name).
			Int("figure", req.Figure).
			Int("value", st.Value).
			Msg("illegal move, turn forfeited")
	}
	g.CheckCapture(g.Next)
	g.BroadcastState()

	if st.Value == 6 {
		return StartTurn()
	}
	return MoveToNextTurn()
}

func stepMoveToNextTurn(g *Game) State {
	current := g.CurrentPlayer()

	if !current.IsDone() && current.CheckDone() {
		log.Info().Int("seat", g.Next).Str("player", current.Name).Msg("player finished")

		g.Ranking = append(g.Ranking, g.Next)
		g.broadcast(PlayerDoneResponse{Type: TypePlayerDone, Player: g.Next})
	}

	if g.IsDone() {
		log.Info().Stringer("game", g.ID).Msg("game finished")
		g.broadcast(GameDoneResponse{Type: TypeGameDone, Ranking: g.Ranking})
		return Done()
	}

	g.AdvanceTurn()
	return StartTurn()
}

func stepWaitingForReconnect(ctx context.Context, st State, g *Game, rejoin <-chan Rejoin) (State, error) {
	select {
	case <-ctx.Done():
		return st, ctx.Err()
	case rj, ok := <-rejoin:
		if !ok {
			return st, ErrRejoinClosed
		}

		for _, p := range g.Players {
			if p.RejoinCode() != rj.Code {
				continue
			}

			p.Reconnect(rj.Conn)
			log.Info().Str("player", p.Name).Msg("player rejoined")

			// Failures here simply lead back into this state on the
			// next read or write.
			g.BroadcastState()
			g.IndicatePlayers()

			return *st.Prev, nil
		}

		log.Warn().Msg("unknown rejoin code")
		return st, nil
	}
}

func sendRolled(p *Player, value int, canMove bool) {
	if err := p.Send(RolledResponse{Type: TypeRolled, Value: value, CanMove: canMove}); err != nil {
		log.Warn().Str("player", p.Name).Msg("failed to report roll")
	}
}
