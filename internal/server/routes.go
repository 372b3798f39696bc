// Package server wires HTTP handlers into a ServeMux for the MADN
// application via routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application
// routes: health check, session creation, the WebSocket join and rejoin
// endpoints, and the test page.
func SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("POST /create", CreateHandler)
	mux.HandleFunc("GET /ws/{session}/{name}", WebSocketHandler)
	mux.HandleFunc("GET /rejoin/{session}/{code}", RejoinHandler)
	mux.HandleFunc("GET /test", TestPageHandler)
	return mux
}
