package integration

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lol3rrr/madn/internal/game"
	"github.com/Lol3rrr/madn/test/testhelpers"
)

const msgTimeout = 2 * time.Second

// gamePlayer is a connected test client together with the identity the
// session handed out for it.
type gamePlayer struct {
	*testhelpers.Client
	name string
	code string
	seat int
}

// joinPlayers connects the given names in seat order and consumes the
// session start messages: the rejoin code, the initial board state, and the
// seat indications.
func joinPlayers(t *testing.T, testServer *httptest.Server, id uuid.UUID, names ...string) []*gamePlayer {
	t.Helper()

	players := make([]*gamePlayer, 0, len(names))
	for seat, name := range names {
		client := testhelpers.NewClient(t, wsURL(testServer, "/ws/"+id.String()+"/"+name), testServer.URL)
		players = append(players, &gamePlayer{Client: client, name: name, seat: seat})
	}

	for _, p := range players {
		var rejoin game.RejoinCodeResponse
		p.Expect(t, game.TypeRejoinCode, msgTimeout, &rejoin)
		assert.Equal(t, id.String(), rejoin.Game)
		p.code = rejoin.Code

		var state game.StateResponse
		p.Expect(t, game.TypeState, msgTimeout, &state)
		require.Len(t, state.Players, len(names))
		for seat, ps := range state.Players {
			assert.Equal(t, names[seat], ps.Name)
			for _, f := range ps.Figures {
				assert.Equal(t, game.KindStart, f.Kind)
			}
		}

		for seat := range names {
			var indication game.IndicatePlayerResponse
			p.Expect(t, game.TypeIndicatePlayer, msgTimeout, &indication)
			assert.Equal(t, seat, indication.Player)
			assert.Equal(t, names[seat], indication.Name)
			assert.Equal(t, p.seat == seat, indication.You)
		}
	}

	return players
}

// whoseTurn waits for the first turn message, since the starting player is
// chosen at random.
func whoseTurn(t *testing.T, a, b *gamePlayer) (current, other *gamePlayer) {
	t.Helper()

	timer := time.NewTimer(msgTimeout)
	defer timer.Stop()

	aMsgs, bMsgs := a.Msgs, b.Msgs
	for {
		select {
		case raw, ok := <-aMsgs:
			if !ok {
				aMsgs = nil
				continue
			}
			if isType(raw, game.TypeTurn) {
				return a, b
			}
		case raw, ok := <-bMsgs:
			if !ok {
				bMsgs = nil
				continue
			}
			if isType(raw, game.TypeTurn) {
				return b, a
			}
		case <-timer.C:
			t.Fatal("Timed out waiting for a turn message")
		}
	}
}

func isType(raw []byte, want game.ResponseType) bool {
	var envelope struct {
		Type game.ResponseType `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return false
	}
	return envelope.Type == want
}

func TestTwoPlayerGameFlow(t *testing.T) {
	// The raw source values map to rolls value%6+1: 6, 3, then all ones.
	testServer, _ := setupGameServer(t, 5, 2, 0, 0, 0, 0)

	id := createGame(t, testServer, 2)
	players := joinPlayers(t, testServer, id, "alice", "bob")
	current, other := whoseTurn(t, players[0], players[1])

	// Six with every figure in start: one enters the board automatically
	// and the player rolls again.
	current.Send(t, game.Request{Type: game.RequestRoll})

	var rolled game.RolledResponse
	current.Expect(t, game.TypeRolled, msgTimeout, &rolled)
	assert.Equal(t, 6, rolled.Value)
	assert.False(t, rolled.CanMove)

	var state game.StateResponse
	other.Expect(t, game.TypeState, msgTimeout, &state)
	assert.Equal(t, game.OnField(0), state.Players[current.seat].Figures[0])

	// The re-roll is a three, which forces the entry blocker forward.
	current.Expect(t, game.TypeTurn, msgTimeout, nil)
	current.Send(t, game.Request{Type: game.RequestRoll})
	current.Expect(t, game.TypeRolled, msgTimeout, &rolled)
	assert.Equal(t, 3, rolled.Value)
	assert.False(t, rolled.CanMove)

	other.Expect(t, game.TypeState, msgTimeout, &state)
	assert.Equal(t, game.OnField(3), state.Players[current.seat].Figures[0])

	// The other player cannot move anything and burns three roll attempts.
	for attempt := 0; attempt < 3; attempt++ {
		other.Expect(t, game.TypeTurn, msgTimeout, nil)
		other.Send(t, game.Request{Type: game.RequestRoll})
		other.Expect(t, game.TypeRolled, msgTimeout, &rolled)
		assert.Equal(t, 1, rolled.Value)
		assert.False(t, rolled.CanMove)
	}

	// Back to the first player, who now gets to pick a figure.
	current.Expect(t, game.TypeTurn, msgTimeout, nil)
	current.Send(t, game.Request{Type: game.RequestRoll})
	current.Expect(t, game.TypeRolled, msgTimeout, &rolled)
	assert.Equal(t, 1, rolled.Value)
	assert.True(t, rolled.CanMove)

	current.Send(t, game.Request{Type: game.RequestMove, Figure: 0})
	other.Expect(t, game.TypeState, msgTimeout, &state)
	assert.Equal(t, game.OnField(4), state.Players[current.seat].Figures[0])
}

func TestReconnectOverWebSocket(t *testing.T) {
	testServer, _ := setupGameServer(t, 5)

	id := createGame(t, testServer, 2)
	players := joinPlayers(t, testServer, id, "alice", "bob")
	current, other := whoseTurn(t, players[0], players[1])

	// Dropping the current player pauses the game until the rejoin code is
	// presented over the rejoin endpoint.
	current.Close()

	replacement := testhelpers.NewClient(t,
		wsURL(testServer, "/rejoin/"+id.String()+"/"+current.code), testServer.URL)

	var state game.StateResponse
	replacement.Expect(t, game.TypeState, msgTimeout, &state)
	require.Len(t, state.Players, 2)

	// The interrupted turn is offered to the reconnected player again.
	replacement.Expect(t, game.TypeTurn, msgTimeout, nil)
	replacement.Send(t, game.Request{Type: game.RequestRoll})

	var rolled game.RolledResponse
	replacement.Expect(t, game.TypeRolled, msgTimeout, &rolled)
	assert.Equal(t, 6, rolled.Value)

	// The resync broadcast still shows every figure in start, the next one
	// has the six resolved.
	other.Expect(t, game.TypeState, msgTimeout, &state)
	assert.Equal(t, game.InStart(), state.Players[current.seat].Figures[0])

	other.Expect(t, game.TypeState, msgTimeout, &state)
	assert.Equal(t, game.OnField(0), state.Players[current.seat].Figures[0])
}
