// Package server runs individual game sessions: collecting players in a
// lobby, driving the turn state machine, and cleaning up connections.
package server

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Lol3rrr/madn/internal/game"
)

// The board has four start corners, ten fields apart.
const (
	minPlayers = 2
	maxPlayers = 4
)

type joinRequest struct {
	name string
	conn game.Conn
}

// session is a single lobby and, once enough players joined, a running game.
// The session goroutine owns all player connections; the HTTP layer only
// hands connections over through the join and rejoin channels.
type session struct {
	id          uuid.UUID
	playerCount int

	join   chan joinRequest
	rejoin chan game.Rejoin

	connMu  sync.Mutex
	conns   []game.Conn
	started bool
}

func newSession(id uuid.UUID, playerCount int) *session {
	return &session{
		id:          id,
		playerCount: playerCount,
		join:        make(chan joinRequest, playerCount),
		rejoin:      make(chan game.Rejoin, 1),
	}
}

// offerJoin hands a fresh connection to the lobby without blocking. Once the
// lobby is full the channel buffer stays occupied and joining fails.
func (s *session) offerJoin(name string, conn game.Conn) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.started {
		return ErrSessionNotJoinable
	}

	select {
	case s.join <- joinRequest{name: name, conn: conn}:
		s.conns = append(s.conns, conn)
		return nil
	default:
		return ErrSessionNotJoinable
	}
}

// markStarted rejects further lobby joins and closes any connection that
// slipped into the buffer after the lobby filled up.
func (s *session) markStarted() {
	s.connMu.Lock()
	s.started = true
	s.connMu.Unlock()

	for {
		select {
		case req := <-s.join:
			_ = req.conn.Close()
		default:
			return
		}
	}
}

// offerRejoin hands a reconnecting connection to the running game.
func (s *session) offerRejoin(code uuid.UUID, conn game.Conn) error {
	select {
	case s.rejoin <- game.Rejoin{Code: code, Conn: conn}:
		s.trackConn(conn)
		return nil
	default:
		return ErrSessionNotJoinable
	}
}

func (s *session) trackConn(conn game.Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.conns = append(s.conns, conn)
}

// closeConns closes every connection ever handed to this session. Used
// during shutdown to unblock the session goroutine.
func (s *session) closeConns() {
	s.connMu.Lock()
	conns := make([]game.Conn, len(s.conns))
	copy(conns, s.conns)
	s.connMu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

// run collects players and drives the game to completion.
func (s *session) run(ctx context.Context, dice game.Dice) {
	logger := log.With().Stringer("session", s.id).Logger()
	logger.Debug().Msg("waiting for players")

	players := make([]game.JoinedPlayer, 0, s.playerCount)
	for len(players) < s.playerCount {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("session cancelled while waiting for players")
			s.closeConns()
			return
		case req := <-s.join:
			players = append(players, game.JoinedPlayer{Name: req.name, Conn: req.conn})
			logger.Debug().Str("player", req.name).Int("joined", len(players)).Msg("player joined")
		}
	}

	s.markStarted()

	g, err := game.New(s.id, players, dice)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start game")
		s.closeConns()
		return
	}

	logger.Info().Msg("starting game")

	if err := g.SendRejoinCodes(); err != nil {
		logger.Warn().Err(err).Msg("failed to deliver rejoin codes")
	}
	g.BroadcastState()
	g.IndicatePlayers()

	state := game.StartTurn()
	for state.Phase != game.PhaseDone {
		state, err = game.Step(ctx, state, g, s.rejoin)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Warn().Err(err).Msg("game aborted")
			}
			break
		}
	}

	if state.Phase == game.PhaseDone {
		logger.Info().Ints("ranking", g.Ranking).Msg("game finished")
	}

	g.Close()
}
