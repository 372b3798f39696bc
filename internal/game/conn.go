package game

import "errors"

// ErrDisconnect is reported when a player's connection can no longer be
// used. The state machine reacts by waiting for a rejoin.
var ErrDisconnect = errors.New("player disconnected")

// Conn is the minimal connection surface the game needs. The server wraps
// gorilla websocket connections into this interface; tests use a scripted
// implementation.
type Conn interface {
	// ReadMessage blocks until the next text message arrives.
	ReadMessage() ([]byte, error)
	// WriteMessage sends a single text message.
	WriteMessage(data []byte) error
	// Close terminates the connection.
	Close() error
}
