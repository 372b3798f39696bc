package game

import (
	"errors"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// playerOffset is the distance between two players' entry fields on the ring.
const playerOffset = 10

// Game holds the complete state of one running session.
type Game struct {
	ID      uuid.UUID
	Players []*Player
	// Next is the index of the player whose turn it is.
	Next int
	// Ranking collects finished players, winner first.
	Ranking []int

	dice Dice
}

// JoinedPlayer pairs a player name with its connection for game setup.
type JoinedPlayer struct {
	Name string
	Conn Conn
}

// New creates a game with a randomly chosen starting player.
func New(id uuid.UUID, joined []JoinedPlayer, dice Dice) (*Game, error) {
	if len(joined) == 0 {
		return nil, errors.New("game needs at least one player")
	}

	players := make([]*Player, 0, len(joined))
	for _, j := range joined {
		players = append(players, NewPlayer(j.Name, j.Conn))
	}

	return &Game{
		ID:      id,
		Players: players,
		Next:    rand.IntN(len(players)),
		dice:    dice,
	}, nil
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	return g.Players[g.Next]
}

// boardPosition maps a figure progress to the shared ring coordinate of the
// given seat.
func boardPosition(progress, seat int) int {
	return (progress + seat*playerOffset) % BoardFields
}

// CheckCapture sends every opponent figure sharing a ring field with one of
// the given player's figures back to its start area.
func (g *Game) CheckCapture(player int) {
	occupied := make(map[int]struct{})
	for _, f := range g.Players[player].Figures {
		if f.Kind == KindField {
			occupied[boardPosition(f.Progress, player)] = struct{}{}
		}
	}

	for seat, p := range g.Players {
		if seat == player {
			continue
		}
		for i, f := range p.Figures {
			if f.Kind != KindField {
				continue
			}
			if _, hit := occupied[boardPosition(f.Progress, seat)]; hit {
				p.Figures[i] = InStart()
				log.Debug().
					Str("player", p.Name).
					Int("figure", i).
					Msg("figure captured, back to start")
			}
		}
	}
}

// SendRejoinCodes delivers each player's reconnect secret.
func (g *Game) SendRejoinCodes() error {
	for _, p := range g.Players {
		msg := RejoinCodeResponse{
			Type: TypeRejoinCode,
			Game: g.ID.String(),
			Code: p.RejoinCode().String(),
		}
		if err := p.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// BroadcastState sends the full board state to every player. Send failures
// are logged but do not interrupt the broadcast; a broken connection is
// picked up by the state machine on that player's next turn.
func (g *Game) BroadcastState() {
	state := StateResponse{Type: TypeState, Players: make([]PlayerState, 0, len(g.Players))}
	for _, p := range g.Players {
		state.Players = append(state.Players, PlayerState{Name: p.Name, Figures: p.Figures})
	}

	g.broadcast(state)
}

// IndicatePlayers tells every client which seat belongs to which name.
func (g *Game) IndicatePlayers() {
	for you, receiver := range g.Players {
		for seat, p := range g.Players {
			msg := IndicatePlayerResponse{
				Type:   TypeIndicatePlayer,
				Player: seat,
				Name:   p.Name,
				You:    you == seat,
			}
			if err := receiver.Send(msg); err != nil {
				log.Warn().Str("player", receiver.Name).Msg("failed to indicate players")
				break
			}
		}
	}
}

// IsDone reports whether every player finished.
func (g *Game) IsDone() bool {
	for _, p := range g.Players {
		if !p.IsDone() {
			return false
		}
	}
	return true
}

// AdvanceTurn moves Next to the following player that is not done yet.
func (g *Game) AdvanceTurn() {
	for range g.Players {
		g.Next = (g.Next + 1) % len(g.Players)
		if !g.Players[g.Next].IsDone() {
			return
		}
	}
}

// Close terminates all player connections.
func (g *Game) Close() {
	for _, p := range g.Players {
		if err := p.Close(); err != nil {
			log.Debug().Err(err).Str("player", p.Name).Msg("closing connection")
		}
	}
}

func (g *Game) broadcast(msg any) {
	for _, p := range g.Players {
		if err := p.Send(msg); err != nil {
			log.Warn().Str("player", p.Name).Msg("broadcast failed")
		}
	}
}

// Roll rolls the game's dice.
func (g *Game) Roll() int {
	return g.dice.Roll()
}
