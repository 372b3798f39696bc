// Package server serves the built-in HTML test page for playing against the
// server without a dedicated client.
package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// TestPageHandler serves an HTML test page for trying out the game protocol.
// It provides a simple web interface to create a session, join it, and play
// by sending roll and move requests.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := w.Write([]byte(testPageHTML)); err != nil {
		log.Warn().Err(err).Msg("writing test page")
	}
}

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>MADN Test Client</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
            font-family: monospace;
            font-size: 13px;
        }
        input[type="text"], input[type="number"] { padding: 5px; margin-right: 10px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        button:disabled { background-color: #aaa; }
    </style>
</head>
<body>
    <h1>MADN Test Client</h1>

    <div>
        <input type="number" id="playerCount" value="2" min="2" max="4">
        <button onclick="createGame()">Create Game</button>
    </div>
    <div style="margin-top: 10px;">
        <input type="text" id="sessionInput" placeholder="Session id">
        <input type="text" id="nameInput" placeholder="Your name">
        <button onclick="joinGame()">Join</button>
    </div>
    <div style="margin-top: 10px;">
        <button id="rollButton" onclick="sendRoll()" disabled>Roll</button>
        <input type="number" id="figureInput" value="0" min="0" max="3">
        <button id="moveButton" onclick="sendMove()" disabled>Move Figure</button>
    </div>

    <div id="messages"></div>

    <script>
        let ws = null;
        const messagesDiv = document.getElementById('messages');

        function addMessage(message) {
            const el = document.createElement('div');
            el.textContent = message;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function createGame() {
            const players = parseInt(document.getElementById('playerCount').value, 10);
            fetch('/create', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ players: players })
            })
                .then(resp => resp.json())
                .then(data => {
                    document.getElementById('sessionInput').value = data.game;
                    addMessage('Created game ' + data.game);
                })
                .catch(err => addMessage('Create failed: ' + err));
        }

        function joinGame() {
            const session = document.getElementById('sessionInput').value.trim();
            const name = document.getElementById('nameInput').value.trim();
            if (!session || !name) {
                addMessage('Session id and name are required');
                return;
            }

            const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(proto + location.host + '/ws/' + session + '/' + encodeURIComponent(name));

            ws.onopen = function() {
                addMessage('Connected as ' + name);
                document.getElementById('rollButton').disabled = false;
                document.getElementById('moveButton').disabled = false;
            };
            ws.onmessage = function(event) {
                addMessage('<- ' + event.data);
            };
            ws.onclose = function() {
                addMessage('Connection closed');
                document.getElementById('rollButton').disabled = true;
                document.getElementById('moveButton').disabled = true;
                ws = null;
            };
            ws.onerror = function(err) {
                addMessage('Connection error');
            };
        }

        function send(msg) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                const raw = JSON.stringify(msg);
                ws.send(raw);
                addMessage('-> ' + raw);
            }
        }

        function sendRoll() {
            send({ type: 'roll' });
        }

        function sendMove() {
            const figure = parseInt(document.getElementById('figureInput').value, 10);
            send({ type: 'move', figure: figure });
        }
    </script>
</body>
</html>`
