// Package game implements the rules of Mensch ärgere Dich nicht: figures,
// players, the board, dice, and the turn state machine. The package is
// transport-agnostic; connections are hidden behind the Conn interface.
package game

import (
	"encoding/json"
	"fmt"
)

// FigureKind describes where a figure currently is.
type FigureKind string

const (
	// KindStart is the start area next to the board.
	KindStart FigureKind = "start"
	// KindField is one of the 40 ring fields. Progress counts from the
	// owner's entry field (0) up to 39.
	KindField FigureKind = "field"
	// KindHouse is the owner's home column, positions 0 to 3.
	KindHouse FigureKind = "house"
)

// FiguresPerPlayer is the number of figures each player controls.
const FiguresPerPlayer = 4

// BoardFields is the length of the shared ring.
const BoardFields = 40

// HouseSize is the number of slots in each player's house.
const HouseSize = 4

// Figure is a single playing piece. Progress is only meaningful for the
// field and house kinds.
type Figure struct {
	Kind     FigureKind `json:"kind"`
	Progress int        `json:"progress,omitempty"`
}

// InStart returns a figure waiting in the start area.
func InStart() Figure { return Figure{Kind: KindStart} }

// OnField returns a figure on the ring, moved the given number of fields
// from its owner's entry field.
func OnField(progress int) Figure { return Figure{Kind: KindField, Progress: progress} }

// InHouse returns a figure parked in the house at the given position.
func InHouse(pos int) Figure { return Figure{Kind: KindHouse, Progress: pos} }

func (f Figure) String() string {
	switch f.Kind {
	case KindField:
		return fmt.Sprintf("field(%d)", f.Progress)
	case KindHouse:
		return fmt.Sprintf("house(%d)", f.Progress)
	default:
		return "start"
	}
}

// UnmarshalJSON validates the kind on top of the default decoding.
func (f *Figure) UnmarshalJSON(data []byte) error {
	type plain Figure
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	switch p.Kind {
	case KindStart, KindField, KindHouse:
	default:
		return fmt.Errorf("unknown figure kind %q", p.Kind)
	}
	*f = Figure(p)
	return nil
}
