package game

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Player is one seat at the board, together with its connection.
type Player struct {
	Name    string
	Figures [FiguresPerPlayer]Figure

	conn       Conn
	done       bool
	rejoinCode uuid.UUID
}

// NewPlayer creates a player with all figures in the start area and a fresh
// rejoin code.
func NewPlayer(name string, conn Conn) *Player {
	p := &Player{
		Name:       name,
		conn:       conn,
		rejoinCode: uuid.New(),
	}
	for i := range p.Figures {
		p.Figures[i] = InStart()
	}
	return p
}

// RejoinCode returns the secret this player needs to reconnect.
func (p *Player) RejoinCode() uuid.UUID {
	return p.rejoinCode
}

// Reconnect swaps in a new connection after the old one failed.
func (p *Player) Reconnect(conn Conn) {
	p.conn = conn
}

// Close terminates the player's connection.
func (p *Player) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// IsDone reports whether the player already parked all figures.
func (p *Player) IsDone() bool {
	return p.done
}

// HasFiguresInStart reports whether any figure still waits in the start area.
func (p *Player) HasFiguresInStart() bool {
	for _, f := range p.Figures {
		if f.Kind == KindStart {
			return true
		}
	}
	return false
}

// HasFiguresOnBoard reports whether any figure is on the ring or in the house.
func (p *Player) HasFiguresOnBoard() bool {
	for _, f := range p.Figures {
		if f.Kind == KindField || f.Kind == KindHouse {
			return true
		}
	}
	return false
}

// EntryBlocker returns the index of the figure sitting on the player's entry
// field (progress 0), or -1.
func (p *Player) EntryBlocker() int {
	for i, f := range p.Figures {
		if f.Kind == KindField && f.Progress == 0 {
			return i
		}
	}
	return -1
}

// FirstInStart returns the index of a figure in the start area, or -1.
func (p *Player) FirstInStart() int {
	for i, f := range p.Figures {
		if f.Kind == KindStart {
			return i
		}
	}
	return -1
}

// moveTarget computes the figure state after moving by amount. The second
// result is false when the move is illegal.
func (p *Player) moveTarget(index, amount int) (Figure, bool) {
	if index < 0 || index >= len(p.Figures) {
		return Figure{}, false
	}

	current := p.Figures[index]

	var next Figure
	switch current.Kind {
	case KindStart:
		// Start figures only leave via a rolled six, never by moving.
		return Figure{}, false
	case KindField:
		target := current.Progress + amount
		if target < BoardFields {
			next = OnField(target)
		} else if diff := target - BoardFields; diff < HouseSize {
			next = InHouse(diff)
		} else {
			return Figure{}, false
		}
	case KindHouse:
		target := current.Progress + amount
		if target >= HouseSize {
			return Figure{}, false
		}
		next = InHouse(target)
	default:
		return Figure{}, false
	}

	// Landing on one of the player's own figures is not allowed.
	for i, f := range p.Figures {
		if i != index && f == next {
			return Figure{}, false
		}
	}

	return next, true
}

// CanMove reports whether the figure at index may legally move by amount.
func (p *Player) CanMove(index, amount int) bool {
	_, ok := p.moveTarget(index, amount)
	return ok
}

// MovableFigures returns the indices of all figures that may legally move
// by amount.
func (p *Player) MovableFigures(amount int) []int {
	var movable []int
	for i := range p.Figures {
		if p.CanMove(i, amount) {
			movable = append(movable, i)
		}
	}
	return movable
}

// MoveFigure advances the figure at index by amount. Illegal moves leave the
// figure untouched and return false.
func (p *Player) MoveFigure(index, amount int) bool {
	next, ok := p.moveTarget(index, amount)
	if !ok {
		return false
	}

	log.Debug().
		Str("player", p.Name).
		Int("figure", index).
		Int("amount", amount).
		Stringer("from", p.Figures[index]).
		Stringer("to", next).
		Msg("moving figure")

	p.Figures[index] = next
	return true
}

// EnterBoard places the figure at index onto the entry field after a six.
func (p *Player) EnterBoard(index int) bool {
	if index < 0 || index >= len(p.Figures) || p.Figures[index].Kind != KindStart {
		return false
	}
	if p.EntryBlocker() >= 0 {
		return false
	}
	p.Figures[index] = OnField(0)
	return true
}

// CheckDone marks the player done once every figure sits in the house and
// reports whether that just became true.
func (p *Player) CheckDone() bool {
	for _, f := range p.Figures {
		if f.Kind != KindHouse {
			return false
		}
	}
	p.done = true
	return true
}

// Send serializes the message and writes it to the player's connection.
func (p *Player) Send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}

	if err := p.conn.WriteMessage(data); err != nil {
		log.Error().Err(err).Str("player", p.Name).Msg("sending message")
		return ErrDisconnect
	}
	return nil
}

// Receive blocks until the player sends the next message.
func (p *Player) Receive() ([]byte, error) {
	data, err := p.conn.ReadMessage()
	if err != nil {
		return nil, ErrDisconnect
	}
	return data, nil
}
