package game

import (
	"encoding/json"
	"fmt"
)

// RequestType enumerates the messages a client may send during its turn.
type RequestType string

const (
	// RequestRoll asks the server to roll the dice.
	RequestRoll RequestType = "roll"
	// RequestMove selects the figure to move after a roll.
	RequestMove RequestType = "move"
)

// Request is the client to server message format. Figure is only used for
// move requests.
type Request struct {
	Type   RequestType `json:"type"`
	Figure int         `json:"figure"`
}

// ParseRequest decodes and validates a raw client message.
func ParseRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("decoding request: %w", err)
	}
	switch req.Type {
	case RequestRoll, RequestMove:
	default:
		return Request{}, fmt.Errorf("unknown request type %q", req.Type)
	}
	return req, nil
}

// ResponseType tags every server to client message.
type ResponseType string

const (
	// TypeRejoinCode delivers the secret a player needs to reconnect.
	TypeRejoinCode ResponseType = "rejoin-code"
	// TypeIndicatePlayer tells a client which seat belongs to which name.
	TypeIndicatePlayer ResponseType = "indicate-player"
	// TypeState carries the full board state.
	TypeState ResponseType = "state"
	// TypeTurn tells the current player to act.
	TypeTurn ResponseType = "turn"
	// TypeRolled reports a dice result to the roller.
	TypeRolled ResponseType = "rolled"
	// TypePlayerDone announces that a player parked all figures.
	TypePlayerDone ResponseType = "player-done"
	// TypeGameDone announces the final ranking.
	TypeGameDone ResponseType = "game-done"
)

// RejoinCodeResponse is sent once to each player after the game starts.
type RejoinCodeResponse struct {
	Type ResponseType `json:"type"`
	Game string       `json:"game"`
	Code string       `json:"code"`
}

// IndicatePlayerResponse maps a seat index to a player name. You is true on
// the message describing the receiving client itself.
type IndicatePlayerResponse struct {
	Type   ResponseType `json:"type"`
	Player int          `json:"player"`
	Name   string       `json:"name"`
	You    bool         `json:"you"`
}

// PlayerState is one player's public state inside a StateResponse.
type PlayerState struct {
	Name    string                    `json:"name"`
	Figures [FiguresPerPlayer]Figure `json:"figures"`
}

// StateResponse is the full board state, broadcast after every move.
type StateResponse struct {
	Type    ResponseType  `json:"type"`
	Players []PlayerState `json:"players"`
}

// TurnResponse asks the receiving player to roll.
type TurnResponse struct {
	Type ResponseType `json:"type"`
}

// RolledResponse reports the dice value. CanMove is true when the player
// gets to pick a figure; false when the turn resolves automatically.
type RolledResponse struct {
	Type    ResponseType `json:"type"`
	Value   int          `json:"value"`
	CanMove bool         `json:"canMove"`
}

// PlayerDoneResponse announces that the given seat finished.
type PlayerDoneResponse struct {
	Type   ResponseType `json:"type"`
	Player int          `json:"player"`
}

// GameDoneResponse announces the final ranking, winner first.
type GameDoneResponse struct {
	Type    ResponseType `json:"type"`
	Ranking []int        `json:"ranking"`
}
