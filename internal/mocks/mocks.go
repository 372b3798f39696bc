// Package mocks provides deterministic test doubles for the game package:
// a scripted dice source and a scripted connection.
package mocks

import (
	"errors"
	"sync"
)

// Source feeds the dice a fixed sequence of raw values. Once the script is
// exhausted it keeps returning zero.
type Source struct {
	mu     sync.Mutex
	values []uint64
}

// NewSource creates a source yielding the given values in order.
func NewSource(values ...uint64) *Source {
	return &Source{values: values}
}

// Uint64 pops the next scripted value.
func (s *Source) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return 0
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

// ErrScriptExhausted is returned by Conn.ReadMessage once all scripted
// incoming messages are consumed.
var ErrScriptExhausted = errors.New("mock connection script exhausted")

// ErrConnClosed is returned after Close was called.
var ErrConnClosed = errors.New("mock connection closed")

// Conn is a scripted game connection. ReadMessage replays the configured
// incoming messages; everything written is recorded and can be inspected
// with Sent.
type Conn struct {
	mu       sync.Mutex
	incoming [][]byte
	sent     [][]byte
	closed   bool
}

// NewConn creates a connection replaying the given incoming messages.
func NewConn(incoming ...[]byte) *Conn {
	return &Conn{incoming: incoming}
}

// ReadMessage pops the next scripted incoming message.
func (c *Conn) ReadMessage() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnClosed
	}
	if len(c.incoming) == 0 {
		return nil, ErrScriptExhausted
	}
	msg := c.incoming[0]
	c.incoming = c.incoming[1:]
	return msg, nil
}

// WriteMessage records the outgoing message.
func (c *Conn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.sent = append(c.sent, buf)
	return nil
}

// Close marks the connection closed; further reads and writes fail.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return nil
}

// Sent returns a copy of all recorded outgoing messages.
func (c *Conn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}
