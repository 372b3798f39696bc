// Package server implements the HTTP and WebSocket layer of the MADN game
// server.
//
// The implementation is organized into specialized files for configuration,
// the session registry, connection handling, routing, and HTTP handlers to
// keep the codebase maintainable and testable as the project grows.
package server
