// Package server adapts gorilla WebSocket connections to the game's Conn
// interface, handling deadlines, keepalive, read limits, and rate limiting
// for each connection.
package server

import (
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Lol3rrr/madn/internal/game"
)

const (
	readWait   = 60 * time.Second
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// wsConn wraps a gorilla connection into a game.Conn. A background ticker
// keeps the connection alive with pings; reads are throttled by the
// configured token bucket.
type wsConn struct {
	conn *websocket.Conn
	addr string

	writeMu sync.Mutex

	maxMessageSize int64
	rateLimiter    *rateLimiter
	rateLimit      RateLimitConfig

	closeOnce sync.Once
	done      chan struct{}
}

var _ game.Conn = (*wsConn)(nil)

func newWSConn(conn *websocket.Conn, addr string) *wsConn {
	cfg := currentConfig()
	conn.SetReadLimit(cfg.MaxMessageSize)

	c := &wsConn{
		conn:           conn,
		addr:           addr,
		maxMessageSize: cfg.MaxMessageSize,
		rateLimiter:    newRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
		rateLimit:      cfg.RateLimit,
		done:           make(chan struct{}),
	}

	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
			log.Warn().Err(err).Str("addr", c.addr).Msg("setting read deadline in pong handler")
		}
		return nil
	})

	go c.keepAlive()

	return c
}

// keepAlive pings the peer until the connection is closed.
func (c *wsConn) keepAlive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err == nil {
				err = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.writeMu.Unlock()

			if err != nil {
				if !isExpectedCloseError(err) {
					log.Debug().Err(err).Str("addr", c.addr).Msg("ping failed")
				}
				return
			}
		}
	}
}

// ReadMessage blocks until the next text message arrives. Messages above the
// rate limit are discarded, not returned.
func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
			return nil, err
		}

		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return nil, err
		}

		if messageType != websocket.TextMessage {
			continue
		}

		if !c.rateLimiter.allow() {
			log.Warn().
				Str("addr", c.addr).
				Int("burst", c.rateLimit.Burst).
				Dur("interval", c.rateLimit.RefillInterval).
				Msg("rate limit exceeded, discarding message")
			continue
		}

		return data, nil
	}
}

// logReadError classifies read failures the way clients commonly produce
// them and logs at an appropriate level.
func (c *wsConn) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		log.Warn().
			Str("addr", c.addr).
			Int64("limit", c.maxMessageSize).
			Msg("message exceeded maximum size")
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		log.Debug().Err(err).Str("addr", c.addr).Msg("client disconnected")
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		log.Debug().Err(err).Str("addr", c.addr).Msg("connection closed")
	default:
		log.Warn().Err(err).Str("addr", c.addr).Msg("websocket read error")
	}
}

// WriteMessage sends a single text message.
func (c *wsConn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame on a best-effort basis and tears the connection
// down.
func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		deadline := time.Now().Add(writeWait)
		_ = c.conn.SetWriteDeadline(deadline)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"), deadline)
		c.writeMu.Unlock()

		err = c.conn.Close()
		if err != nil && isExpectedCloseError(err) {
			err = nil
		}
	})
	return err
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
