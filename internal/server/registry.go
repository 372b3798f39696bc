// Package server coordinates game session creation, joining, rejoining, and
// connection cleanup for the MADN WebSocket system via the Registry type.
package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Lol3rrr/madn/internal/game"
)

// Errors reported by the registry to the HTTP layer.
var (
	ErrInvalidPlayerCount = errors.New("player count must be between 2 and 4")
	ErrRegistryFull       = errors.New("too many open sessions")
	ErrUnknownSession     = errors.New("unknown session")
	ErrSessionNotJoinable = errors.New("session is full or already running")
)

// Registry manages all open game sessions. It tracks session goroutines and
// ensures thread-safe operations through mutex protection, and supports
// graceful shutdown of all running games.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	newDice func() game.Dice
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithDice overrides how sessions obtain their dice. Tests use this to
// inject deterministic dice.
func WithDice(newDice func() game.Dice) RegistryOption {
	return func(r *Registry) {
		r.newDice = newDice
	}
}

// NewRegistry creates an empty session registry ready to manage games.
func NewRegistry(opts ...RegistryOption) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		sessions: make(map[uuid.UUID]*session),
		ctx:      ctx,
		cancel:   cancel,
		newDice:  game.NewRandomDice,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateSession opens a new lobby for the given number of players and starts
// its goroutine. It returns the session id players use to join.
func (r *Registry) CreateSession(playerCount int) (uuid.UUID, error) {
	if playerCount < minPlayers || playerCount > maxPlayers {
		return uuid.Nil, ErrInvalidPlayerCount
	}

	maxSessions := currentConfig().MaxSessions

	r.mu.Lock()
	if len(r.sessions) >= maxSessions {
		r.mu.Unlock()
		return uuid.Nil, ErrRegistryFull
	}

	s := newSession(uuid.New(), playerCount)
	r.sessions[s.id] = s
	sessionCount := len(r.sessions)
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.remove(s.id)
		s.run(r.ctx, r.newDice())
	}()

	log.Info().
		Stringer("session", s.id).
		Int("players", playerCount).
		Int("open_sessions", sessionCount).
		Msg("session created")

	return s.id, nil
}

// Has reports whether the session exists.
func (r *Registry) Has(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[id]
	return ok
}

// Count returns the number of open sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Join hands a named connection to the session's lobby.
func (r *Registry) Join(id uuid.UUID, name string, conn game.Conn) error {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return ErrUnknownSession
	}
	return s.offerJoin(name, conn)
}

// Rejoin hands a reconnecting connection to a running session.
func (r *Registry) Rejoin(id, code uuid.UUID, conn game.Conn) error {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return ErrUnknownSession
	}
	return s.offerRejoin(code, conn)
}

func (r *Registry) remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	sessionCount := len(r.sessions)
	r.mu.Unlock()

	log.Debug().Stringer("session", id).Int("open_sessions", sessionCount).Msg("session removed")
}

// Shutdown stops all sessions and waits for their goroutines to complete.
// It returns after all games have wound down, or context.DeadlineExceeded
// when the timeout is reached first.
func (r *Registry) Shutdown(timeout time.Duration) error {
	log.Info().Msg("initiating registry shutdown")

	r.cancel()

	// Closing the connections unblocks sessions waiting in a read.
	r.mu.Lock()
	sessions := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.closeConns()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("registry shutdown completed")
		return nil
	case <-time.After(timeout):
		log.Warn().Msg("registry shutdown timeout reached, some games may still be running")
		return context.DeadlineExceeded
	}
}
