// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in test page.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

var registry = NewRegistry()

// GetRegistry returns the global session registry for shutdown coordination.
func GetRegistry() *Registry {
	return registry
}

// SetRegistry replaces the global session registry. Tests use this to inject
// a registry with deterministic dice.
func SetRegistry(r *Registry) {
	registry = r
}

// CreateRequest is the body of a create call.
type CreateRequest struct {
	Players int `json:"players"`
}

// CreateResponse carries the id of a freshly opened session.
type CreateResponse struct {
	Game string `json:"game"`
}

// CreateHandler opens a new game session. It expects a JSON body naming the
// number of players and responds with the session id that players use to
// join over the WebSocket endpoint.
func CreateHandler(w http.ResponseWriter, r *http.Request) {
	var content CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&content); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := registry.CreateSession(content.Players)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPlayerCount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrRegistryFull):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		default:
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(CreateResponse{Game: id.String()}); err != nil {
		log.Warn().Err(err).Msg("writing create response")
	}
}

// WebSocketHandler handles WebSocket upgrade requests for joining a session.
// It validates the session id and player name, upgrades the HTTP connection,
// and hands the connection to the session's lobby.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	session, err := uuid.Parse(r.PathValue("session"))
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		http.Error(w, "Player name must not be empty", http.StatusBadRequest)
		return
	}

	if !registry.Has(session) {
		http.Error(w, "Unknown session", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	wrapped := newWSConn(conn, r.RemoteAddr)
	if err := registry.Join(session, name, wrapped); err != nil {
		log.Warn().
			Err(err).
			Stringer("session", session).
			Str("player", name).
			Msg("join rejected")
		_ = wrapped.Close()
		return
	}

	log.Debug().Stringer("session", session).Str("player", name).Msg("player connected")
}

// RejoinHandler handles WebSocket upgrade requests for reconnecting to a
// running session with a previously issued rejoin code.
func RejoinHandler(w http.ResponseWriter, r *http.Request) {
	session, err := uuid.Parse(r.PathValue("session"))
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	code, err := uuid.Parse(r.PathValue("code"))
	if err != nil {
		http.Error(w, "Invalid rejoin code", http.StatusBadRequest)
		return
	}

	if !registry.Has(session) {
		http.Error(w, "Unknown session", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	wrapped := newWSConn(conn, r.RemoteAddr)
	if err := registry.Rejoin(session, code, wrapped); err != nil {
		log.Warn().Err(err).Stringer("session", session).Msg("rejoin rejected")
		_ = wrapped.Close()
		return
	}

	log.Debug().Stringer("session", session).Msg("player reconnecting")
}

// HealthHandler provides a simple health check endpoint that returns server status.
// It responds with a plain text message indicating the server is running.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("MADN server is running!"))
}
