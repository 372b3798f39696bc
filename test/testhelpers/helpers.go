// Package testhelpers provides common utilities and helper functions for
// testing the MADN server.
//
// This package contains reusable test utilities that are shared across the
// integration tests. It provides functions for creating test servers, making
// HTTP requests, speaking the game protocol over WebSockets, and asserting
// response properties to reduce code duplication in test files.
package testhelpers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lol3rrr/madn/internal/game"
)

// CreateTestServer creates a test HTTP server with the given handler.
// It returns a running httptest.Server that should be closed after use.
func CreateTestServer(handler http.Handler) *httptest.Server {
	return httptest.NewServer(handler)
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// PostJSON executes a POST request with a JSON body and returns the response.
func PostJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// AssertStatusCode checks if the HTTP response has the expected status code.
// It fails the test with a descriptive error message if the status codes don't match.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// AssertContentType checks if the HTTP response has the expected Content-Type header.
// It fails the test with a descriptive error message if the content types don't match.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	contentType := resp.Header.Get("Content-Type")
	if contentType != expected {
		t.Errorf("Expected content type %s, got %s", expected, contentType)
	}
}

// ConnectWebSocket creates a WebSocket connection to the specified URL using
// the given origin header. It returns the connection or an error if the
// connection fails.
func ConnectWebSocket(url, origin string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// Client wraps a WebSocket connection with a background reader so tests can
// wait for messages on several connections at once. A read deadline on the
// raw connection would poison it once it expires, the pump goroutine avoids
// that.
type Client struct {
	conn *websocket.Conn

	// Msgs delivers every raw message from the server and is closed when
	// the connection drops.
	Msgs chan []byte
}

// NewClient connects to the given WebSocket URL and starts reading messages.
// The connection is closed automatically when the test finishes.
func NewClient(t *testing.T, url, origin string) *Client {
	t.Helper()

	conn, err := ConnectWebSocket(url, origin)
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", url, err)
	}

	c := &Client{
		conn: conn,
		Msgs: make(chan []byte, 64),
	}
	go c.pump()
	t.Cleanup(c.Close)
	return c
}

func (c *Client) pump() {
	defer close(c.Msgs)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.Msgs <- raw
	}
}

// Close terminates the underlying connection. Safe to call multiple times.
func (c *Client) Close() {
	_ = c.conn.Close()
}

// Send transmits a game request to the server.
func (c *Client) Send(t *testing.T, req game.Request) {
	t.Helper()
	if err := c.conn.WriteJSON(req); err != nil {
		t.Fatalf("Failed to send %q request: %v", req.Type, err)
	}
}

// Expect waits until a message of the given type arrives, decodes it into
// out, and returns. Messages of other types are skipped. The test fails when
// the timeout elapses or the connection closes first.
func (c *Client) Expect(t *testing.T, want game.ResponseType, timeout time.Duration, out any) {
	t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case raw, ok := <-c.Msgs:
			if !ok {
				t.Fatalf("Connection closed while waiting for %q message", want)
			}

			var envelope struct {
				Type game.ResponseType `json:"type"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				t.Fatalf("Received invalid message %q: %v", raw, err)
			}

			if envelope.Type != want {
				continue
			}

			if out != nil {
				if err := json.Unmarshal(raw, out); err != nil {
					t.Fatalf("Failed to decode %q message: %v", want, err)
				}
			}
			return
		case <-timer.C:
			t.Fatalf("Timed out waiting for %q message", want)
		}
	}
}

// WaitClosed drains remaining messages and waits for the connection to drop.
func (c *Client) WaitClosed(t *testing.T, timeout time.Duration) {
	t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case _, ok := <-c.Msgs:
			if !ok {
				return
			}
		case <-timer.C:
			t.Fatalf("Timed out waiting for the connection to close")
		}
	}
}
